package intent

import (
	"slices"
	"strings"

	"github.com/dempseyco/hr-assistant-go/internal/stringutil"
)

// Classifier applies the pattern grammar to utterances. It is immutable
// after construction and safe for concurrent use.
type Classifier struct {
	groups []patternGroup
}

// NewClassifier builds the grammar table. Groups are sorted by priority
// so the highest-priority match always wins.
func NewClassifier() *Classifier {
	c := &Classifier{
		groups: []patternGroup{
			{
				intent:    Hybrid,
				priority:  PriorityHybrid,
				matchFunc: matchHybrid,
			},
			{
				intent:   RemoteChoice,
				priority: PriorityRemoteChoice,
				patterns: remoteChoicePatterns,
				extract:  extractRemoteChoice,
			},
			{
				intent:   Salary,
				priority: PrioritySalary,
				patterns: salaryPatterns,
			},
			{
				intent:   DaysOff,
				priority: PriorityDaysOff,
				patterns: daysOffPatterns,
			},
			{
				intent:   Bonus,
				priority: PriorityBonus,
				patterns: bonusPatterns,
			},
			{
				intent:   Location,
				priority: PriorityLocation,
				patterns: locationPatterns,
			},
			{
				intent:   Team,
				priority: PriorityTeam,
				patterns: teamPatterns,
			},
			{
				intent:   Seniority,
				priority: PrioritySeniority,
				patterns: seniorityPatterns,
			},
			{
				intent:   StartDate,
				priority: PriorityStartDate,
				patterns: startDatePatterns,
			},
			{
				intent:   ScheduleCall,
				priority: PriorityScheduleCall,
				patterns: scheduleCallPatterns,
			},
			{
				intent:   EmailHR,
				priority: PriorityEmailHR,
				patterns: emailHRPatterns,
			},
			{
				intent:   HealthInsurance,
				priority: PriorityHealthInsurance,
				patterns: healthInsurancePatterns,
			},
			{
				intent:   W2Request,
				priority: PriorityW2,
				patterns: w2Patterns,
			},
			{
				intent:    UpdateField,
				priority:  PriorityUpdateField,
				matchFunc: matchUpdateWithValue,
				extract:   extractUpdateSlots,
			},
			{
				intent:   UpdateField,
				priority: PriorityUpdateFallback,
				patterns: updateFieldPatterns,
				extract:  extractUpdateSlots,
			},
		},
	}

	// Sort by priority (1 is highest)
	slices.SortFunc(c.groups, func(a, b patternGroup) int {
		return a.priority - b.priority
	})
	return c
}

// Classify maps an utterance to an intent plus captured slots. It never
// fails: no match in any group yields Unknown with no slots.
func (c *Classifier) Classify(utterance string) Result {
	text := normalize(utterance)
	if text == "" {
		return Result{Intent: Unknown}
	}

	for i := range c.groups {
		g := &c.groups[i]
		if !g.matches(text) {
			continue
		}
		res := Result{Intent: g.intent}
		if g.extract != nil {
			res.Slots = g.extract(text)
		}
		return res
	}
	return Result{Intent: Unknown}
}

// EscalationWorthy reports whether the raw utterance uses policy or
// permission phrasing that should pair the response with an HR email
// offer, independent of which intent matched.
func (c *Classifier) EscalationWorthy(utterance string) bool {
	text := normalize(utterance)
	for _, phrase := range escalationPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// escalationPhrases is the second, smaller rule set behind the escalation
// policy. It fires on permission or exception phrasing regardless of
// whether a direct answer exists.
var escalationPhrases = []string{
	"can i",
	"is there a way",
	"am i allowed",
	"allowed to",
	"permission",
	"is it possible",
	"would it be possible",
	"special request",
	"exception to",
	"extra day",
	"more days off",
	"additional pto",
}

func (g *patternGroup) matches(text string) bool {
	if g.matchFunc != nil {
		return g.matchFunc(text)
	}
	for _, p := range g.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// normalize lowercases and collapses whitespace so grammar patterns only
// deal with canonical text.
func normalize(utterance string) string {
	return strings.ToLower(stringutil.NormalizeWhitespace(utterance))
}
