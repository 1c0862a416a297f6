// Package classify assigns topical metadata to chunks of manual text.
//
// Classification is a deterministic, ordered rule cascade: each rule pairs a
// content pattern with a topic/task/minimum-role triple, rules are evaluated
// top to bottom, and the first match wins. Text that matches no rule falls
// through to the general/reference default.
package classify

import (
	"regexp"
	"strings"
)

// Topic identifies the subject area of a chunk.
type Topic string

const (
	TopicGeneral         Topic = "general"
	TopicAttendance      Topic = "attendance"
	TopicChildren        Topic = "children"
	TopicGuardians       Topic = "guardians"
	TopicReports         Topic = "reports"
	TopicStaffManagement Topic = "staff_management"
	TopicEmail           Topic = "email"
	TopicSettings        Topic = "settings"
	TopicNavigation      Topic = "navigation"
	TopicTroubleshooting Topic = "troubleshooting"
	TopicOverview        Topic = "overview"
)

// Task identifies what kind of help a chunk offers.
type Task string

const (
	TaskReference       Task = "reference"
	TaskProcedure       Task = "procedure"
	TaskNavigation      Task = "navigation"
	TaskTroubleshooting Task = "troubleshooting"
)

// Role tiers used as role_min floors. Retrieval filters results so callers
// below a chunk's floor never see it; the floor is not validated against any
// external privilege enumeration here.
const (
	RoleVolunteer   = 1
	RoleTeamLeader  = 3
	RoleCoordinator = 5
	RoleAdmin       = 10
)

// Result is the metadata triple produced for a chunk.
type Result struct {
	Topic   Topic
	Task    Task
	RoleMin int
}

// DefaultResult is what Classify returns when no rule matches.
var DefaultResult = Result{Topic: TopicGeneral, Task: TaskReference, RoleMin: RoleVolunteer}

// rule pairs a compiled pattern with the result it yields. classify is a
// function rather than a bare Result because one rule (children) picks its
// task from a secondary pattern.
type rule struct {
	pattern  *regexp.Regexp
	classify func(lower string) Result
}

// registerPattern distinguishes register/add procedures from plain
// record-browsing within the children rule.
var registerPattern = regexp.MustCompile(`register|add`)

func fixed(topic Topic, task Task, roleMin int) func(string) Result {
	r := Result{Topic: topic, Task: task, RoleMin: roleMin}
	return func(string) Result { return r }
}

// rules is the cascade in priority order. Order is load-bearing: text
// matching several rules classifies by the earliest one.
var rules = []rule{
	{regexp.MustCompile(`check.?in|attendance|qr.?(code|scan)`),
		fixed(TopicAttendance, TaskProcedure, RoleVolunteer)},
	{regexp.MustCompile(`register.*child|add.*child|child.*record|formal.?id`),
		func(lower string) Result {
			task := TaskNavigation
			if registerPattern.MatchString(lower) {
				task = TaskProcedure
			}
			return Result{Topic: TopicChildren, Task: task, RoleMin: RoleTeamLeader}
		}},
	{regexp.MustCompile(`guardian|parent|emergency`),
		fixed(TopicGuardians, TaskNavigation, RoleTeamLeader)},
	{regexp.MustCompile(`report|analytic|dashboard|statistic`),
		fixed(TopicReports, TaskNavigation, RoleCoordinator)},
	{regexp.MustCompile(`staff.*management|volunteer.*assign|access.*level`),
		fixed(TopicStaffManagement, TaskNavigation, RoleCoordinator)},
	{regexp.MustCompile(`email.*template|send.*email|smtp`),
		fixed(TopicEmail, TaskProcedure, RoleCoordinator)},
	{regexp.MustCompile(`settings|configuration|api.*key|deployment`),
		fixed(TopicSettings, TaskNavigation, RoleAdmin)},
	{regexp.MustCompile(`navigation|menu|button|sidebar`),
		fixed(TopicNavigation, TaskNavigation, RoleVolunteer)},
	{regexp.MustCompile(`error|troubleshoot|fix|debug`),
		fixed(TopicTroubleshooting, TaskTroubleshooting, RoleVolunteer)},
	{regexp.MustCompile(`introduction|overview|getting.*started`),
		fixed(TopicOverview, TaskReference, RoleVolunteer)},
}

// Classify maps chunk text to its metadata triple. It is pure and total:
// every input yields exactly one Result. Matching is case-insensitive over
// the full text.
func Classify(text string) Result {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.pattern.MatchString(lower) {
			return r.classify(lower)
		}
	}
	return DefaultResult
}
