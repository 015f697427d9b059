package bind

import (
	"net/http/httptest"
	"testing"

	perr "tasksync/internal/platform/errors"
)

type taskQuery struct {
	Status   string `query:"status" json:"status" validate:"omitempty,oneof=To-do In-progress Completed"`
	Assignee string `query:"assignee" json:"assignee"`
	Limit    int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
	Open     bool   `query:"open" json:"open"`
}

func TestParseQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/tasks?status=Completed&assignee=Doug&limit=25&open=true&limit=3", nil)
	q, err := ParseQuery[taskQuery](r)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if q.Status != "Completed" || q.Assignee != "Doug" || q.Limit != 25 || !q.Open {
		t.Fatalf("decoded %+v", q)
	}
}

func TestParseQuery_Empty(t *testing.T) {
	q, err := ParseQuery[taskQuery](httptest.NewRequest("GET", "/tasks", nil))
	if err != nil || q != (taskQuery{}) {
		t.Fatalf("empty query = %+v, %v", q, err)
	}
}

func TestParseQuery_Failures(t *testing.T) {
	for name, url := range map[string]string{
		"not a number": "/tasks?limit=lots",
		"out of range": "/tasks?limit=9000",
		"bad enum":     "/tasks?status=Blocked",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQuery[taskQuery](httptest.NewRequest("GET", url, nil))
			if !perr.IsCode(err, perr.ErrorCodeValidation) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}
