package conversation

import (
	"fmt"
	"strconv"

	"jobmate/vacancy-bot/internal/model"
)

// FormatVacancy renders one vacancy as a chat message.
func FormatVacancy(cfg Config, v model.Vacancy) string {
	salary := cfg.NotSpecified
	if v.Salary != nil {
		salary = strconv.FormatFloat(*v.Salary, 'f', -1, 64)
	}
	return fmt.Sprintf("Title: %s\nCompany: %s\nDescription: %s\nCity: %s\nSalary: %s",
		v.Title, v.Company, v.Description, v.City, salary)
}
