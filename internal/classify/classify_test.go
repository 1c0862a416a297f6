package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_RuleTriples(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Result
	}{
		{"attendance check-in", "Scan the QR code at check-in to mark attendance.",
			Result{TopicAttendance, TaskProcedure, RoleVolunteer}},
		{"attendance spaced checkin", "Check in each child at the kiosk",
			Result{TopicAttendance, TaskProcedure, RoleVolunteer}},
		{"children register is a procedure", "To register a new child, open the child form.",
			Result{TopicChildren, TaskProcedure, RoleTeamLeader}},
		{"children record browsing is navigation", "Each child record shows medical notes.",
			Result{TopicChildren, TaskNavigation, RoleTeamLeader}},
		{"guardians", "Guardians can update the emergency contact details.",
			Result{TopicGuardians, TaskNavigation, RoleTeamLeader}},
		{"reports", "The dashboard shows weekly statistics.",
			Result{TopicReports, TaskNavigation, RoleCoordinator}},
		{"staff management", "Staff management lets you change a volunteer assignment.",
			Result{TopicStaffManagement, TaskNavigation, RoleCoordinator}},
		{"email", "Configure the SMTP server before you send emails.",
			Result{TopicEmail, TaskProcedure, RoleCoordinator}},
		{"settings", "The settings page holds your deployment options.",
			Result{TopicSettings, TaskNavigation, RoleAdmin}},
		{"navigation", "Use the sidebar to reach any page.",
			Result{TopicNavigation, TaskNavigation, RoleVolunteer}},
		{"troubleshooting", "If you see an error, try these steps to debug it.",
			Result{TopicTroubleshooting, TaskTroubleshooting, RoleVolunteer}},
		{"overview", "This introduction covers getting started.",
			Result{TopicOverview, TaskReference, RoleVolunteer}},
		{"no match falls through to default", "The weather was pleasant all afternoon.",
			DefaultResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassify_PriorityOrderFirstMatchWins(t *testing.T) {
	// Contains both check-in (rule 1) and report (rule 4) terms; the
	// earlier rule must win.
	got := Classify("The check-in report lists every scan.")
	assert.Equal(t, Result{TopicAttendance, TaskProcedure, RoleVolunteer}, got)

	// Guardian terms (rule 3) beat settings terms (rule 7).
	got = Classify("guardian configuration options")
	assert.Equal(t, TopicGuardians, got.Topic)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	lower := Classify("configure smtp relay")
	upper := Classify("CONFIGURE SMTP RELAY")
	assert.Equal(t, lower, upper)
	assert.Equal(t, TopicEmail, upper.Topic)
}

func TestClassify_PureAndTotal(t *testing.T) {
	inputs := []string{"", "   ", "child", "x", "report report report"}
	for _, in := range inputs {
		first := Classify(in)
		second := Classify(in)
		assert.Equal(t, first, second, "Classify must be deterministic for %q", in)
		assert.NotEmpty(t, first.Topic)
		assert.NotEmpty(t, first.Task)
		assert.GreaterOrEqual(t, first.RoleMin, RoleVolunteer)
	}
}

func TestClassify_ChildrenTaskSubRule(t *testing.T) {
	// "child record" without register/add terms browses records.
	nav := Classify("open the child record from the list")
	assert.Equal(t, TaskNavigation, nav.Task)

	// Adding anywhere in the text flips the task to procedure.
	proc := Classify("add a sibling to the child record")
	assert.Equal(t, TaskProcedure, proc.Task)
}
