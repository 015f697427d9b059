package respparse

import (
	"strings"
	"testing"

	"tasksync/internal/core/status"
	"tasksync/internal/core/ticketid"
	"tasksync/internal/platform/testkit"
)

const completion = `Here are the tasks I found.

**Doug's Tasks:**
1. Refactor the login validation (Coding) [TASK_ID: NONE] [ESTIMATED: 3 hours] [STATUS: To-do] [IS_FUTURE_PLAN: false]
2. Send the vendor contract to legal (Non-Coding) [ESTIMATED: half day]

John Tasks:
1. Database schema updates (Coding) [TASK_ID: sp 25] [STATUS: done] [TIME SPENT: 2 days]
2. [Task description] (Coding|Non-Coding) [TASK_ID: KEY-NNN]

[Name]'s Tasks:
1. Something echoed from the prompt (Coding)

TBD Tasks:
1. Evaluate a new CI provider (Non-Coding)

Empty Person's Tasks:
`

func TestParseGrammar(t *testing.T) {
	res := Parse(completion)
	if len(res.Participants) != 3 {
		t.Fatalf("want 3 participants, got %+v", res.Participants)
	}
	names := []string{res.Participants[0].Name, res.Participants[1].Name, res.Participants[2].Name}
	if strings.Join(names, ",") != "Doug,John,TBD" {
		t.Fatalf("order = %v", names)
	}

	doug, _ := res.Get("doug")
	if len(doug.Coding) != 1 || len(doug.NonCoding) != 1 {
		t.Fatalf("doug = %+v", doug)
	}
	c := doug.Coding[0]
	if c.Description != "Refactor the login validation" || c.Estimated != 3 || c.TicketID != ticketid.None ||
		c.Status != status.ToDo || !c.StatusExplicit || c.IsFuturePlan || c.Assignee != "Doug" {
		t.Fatalf("doug coding = %+v", c)
	}
	if nc := doug.NonCoding[0]; nc.Estimated != 4 || nc.StatusExplicit || nc.Status != status.ToDo {
		t.Fatalf("doug non-coding = %+v", nc)
	}

	john, _ := res.Get("John")
	if john.Len() != 1 {
		t.Fatalf("placeholder line kept: %+v", john)
	}
	j := john.Coding[0]
	if j.TicketID != "SP-25" || j.Status != status.Completed || j.TimeSpent != 16 || !j.HasTicket() {
		t.Fatalf("john = %+v", j)
	}

	tbd, _ := res.Get("TBD")
	if got := tbd.NonCoding[0]; !got.IsFuturePlan || got.Assignee != "TBD" {
		t.Fatalf("TBD tasks must be future plans: %+v", got)
	}
	if _, ok := res.Get("Empty Person"); ok {
		t.Fatalf("participant without tasks should be dropped")
	}
}

func TestParseInference(t *testing.T) {
	res := Parse(`Ann's Tasks:
1. Put the billing revamp on the roadmap for Q3
2. Fix the crash in checkout
3. Book the team offsite (FUTURE PLAN)
4. Plan hiring [IS_FUTURE_PLAN: maybe]`)
	ann, ok := res.Get("Ann")
	if !ok || ann.Len() != 4 {
		t.Fatalf("ann = %+v", res)
	}
	all := res.Tasks()
	byDesc := map[string]Task{}
	for _, x := range all {
		byDesc[x.Description] = x
	}

	road := byDesc["Put the billing revamp on the roadmap for Q3"]
	if !road.IsFuturePlan || road.Assignee != "Ann" {
		t.Fatalf("roadmap = %+v", road)
	}
	fix := byDesc["Fix the crash in checkout"]
	if fix.Type != Coding || fix.WorkType != WorkBug || fix.IsFuturePlan {
		t.Fatalf("fix = %+v", fix)
	}
	if off := byDesc["Book the team offsite (FUTURE PLAN)"]; off.Type != NonCoding {
		t.Fatalf("offsite = %+v", off)
	}
	if h := byDesc["Plan hiring"]; h.IsFuturePlan {
		t.Fatalf("unreadable IS_FUTURE_PLAN falls back to inference: %+v", h)
	}
}

func TestParseTypeNoteFuturePlan(t *testing.T) {
	res := Parse("Bo Tasks:\n1. Migrate to the new queue (Coding, FUTURE PLAN) [ESTIMATED: 2 days]\n")
	bo, _ := res.Get("Bo")
	if bo.Len() != 1 || !bo.Coding[0].IsFuturePlan || bo.Coding[0].Estimated != 16 {
		t.Fatalf("bo = %+v", bo)
	}
}

func TestParseTypeSubHeadersKeepParticipant(t *testing.T) {
	res := Parse("Doug's Tasks:\nCoding Tasks:\n1. Refactor the export module\nNon-Coding Tasks:\n1. Write the onboarding guide\n" +
		"Future Plan Tasks:\n1. Try a second vendor\n\nAnn's Tasks:\n1. Book the venue\n")
	if len(res.Participants) != 2 {
		t.Fatalf("participants = %+v", res.Participants)
	}
	doug, ok := res.Get("Doug")
	if !ok || len(doug.Coding) != 1 || len(doug.NonCoding) != 2 {
		t.Fatalf("doug = %+v", doug)
	}
	if doug.Coding[0].Description != "Refactor the export module" || doug.NonCoding[0].Description != "Write the onboarding guide" {
		t.Fatalf("doug = %+v", doug)
	}
	if doug.NonCoding[0].IsFuturePlan || !doug.NonCoding[1].IsFuturePlan {
		t.Fatalf("future plan sub-header not applied: %+v", doug.NonCoding)
	}
	ann, _ := res.Get("Ann")
	if ann.Len() != 1 || ann.NonCoding[0].IsFuturePlan {
		t.Fatalf("hint leaked into the next participant: %+v", ann)
	}
}

func TestParseUnheadedLinesUseAssigneeTag(t *testing.T) {
	res := Parse("1. Write release notes [ASSIGNEE: Kim Lee]\n2. Orphan line without owner\n")
	if len(res.Participants) != 1 || res.Participants[0].Name != "Kim Lee" {
		t.Fatalf("res = %+v", res)
	}
}

func TestParseGarbage(t *testing.T) {
	for _, in := range []string{"", "nothing useful", "Tasks:\n\x00\x01", "1.\n2. \n", strings.Repeat("[", 5000)} {
		testkit.MustNotPanic(t, func() {
			if res := Parse(in); !res.Empty() {
				t.Fatalf("Parse(%q) = %+v, want empty", in, res)
			}
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	for _, s := range []string{"[description] (Coding)", "do it [STATUS: To-do|In-progress]", "x [ASSIGNEE: <name>]", "..."} {
		if !IsPlaceholder(s) {
			t.Fatalf("IsPlaceholder(%q) = false", s)
		}
	}
	for _, s := range []string{
		"Refactor the login validation (Coding) [STATUS: To-do]",
		"Decide yes/no on the vendor",
		"fix the <br> rendering",
		"Estimate x hours of QA for the release",
	} {
		if IsPlaceholder(s) {
			t.Fatalf("real line %q flagged as placeholder", s)
		}
	}
	if !IsPlaceholder("<description> (Coding|Non-Coding) [TASK_ID: ...] [STATUS: ...]") {
		t.Fatalf("template line not flagged")
	}
}
