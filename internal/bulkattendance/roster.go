package bulkattendance

import (
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/pkg/listfilter"
)

// FilterByClass narrows the roster offered for marking. An empty class keeps everyone.
func FilterByClass(roster []models.Student, class string) []models.Student {
	return listfilter.Apply(roster, listfilter.FieldEquals(func(s models.Student) string { return s.Class }, class))
}
