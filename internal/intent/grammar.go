package intent

import (
	"regexp"
	"strings"
)

// Pattern priorities (lower = higher). The group order is a contract: an
// utterance can plausibly fire several groups (a sentence mentioning both
// "salary" and "move"), and the highest-priority group always wins.
//
// Update requests appear twice. A request with an extractable field and
// value ("change my team to Sales") outranks informational reads, so it
// mutates instead of answering. The bare update verbs ("set.*to",
// "make.*it") are too loose for that slot: they sit below every other
// group so "How much do I make? Is it enough?" still reads as a salary
// question, and only claim an utterance nothing else wanted.
const (
	PriorityHybrid          = 1 // Location change + permission phrasing co-occurring
	PriorityRemoteChoice    = 2 // Anchored remote/on-site follow-up selections
	PriorityUpdateField     = 3 // Update requests with a captured field and value
	PrioritySalary          = 4
	PriorityDaysOff         = 5
	PriorityBonus           = 6
	PriorityLocation        = 7
	PriorityTeam            = 8
	PrioritySeniority       = 9
	PriorityStartDate       = 10
	PriorityScheduleCall    = 11
	PriorityEmailHR         = 12
	PriorityHealthInsurance = 13
	PriorityW2              = 14
	PriorityUpdateFallback  = 15 // Bare update verbs with no captured value
)

// slotExtractor pulls typed slot values out of a matched utterance.
// The utterance is already lowercased and whitespace-normalized.
type slotExtractor func(text string) Slots

// patternGroup represents one intent's matchers, sorted by priority.
type patternGroup struct {
	intent    Intent
	priority  int
	patterns  []*regexp.Regexp
	matchFunc func(string) bool // Optional custom matching logic (precedence over patterns)
	extract   slotExtractor     // Optional slot capture
}

func compileAll(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(expr))
	}
	return compiled
}

var (
	salaryPatterns = compileAll(
		`what.*salary`,
		`how much.*make`,
		`how much.*paid`,
		`my.*salary`,
		`salary.*is`,
	)

	daysOffPatterns = compileAll(
		`days off`,
		`vacation.*left`,
		`vacation.*remaining`,
		`time off`,
		`pto`,
		`leave.*remaining`,
	)

	bonusPatterns = compileAll(
		`bonus`,
	)

	locationPatterns = compileAll(
		`work.*person`,
		`on-site`,
		`onsite`,
		`remote`,
		`work.*office`,
		`where.*work`,
		`what.*town`,
		`which.*town`,
		`my.*town`,
		`what.*city`,
		`which.*city`,
		`my.*city`,
		`where.*located`,
		`my.*location`,
		`where.*live`,
		`my.*home`,
		`home.*town`,
		`home.*city`,
		`based.*in`,
		`living.*in`,
	)

	teamPatterns = compileAll(
		`what.*team`,
		`which.*team`,
		`my.*team`,
	)

	seniorityPatterns = compileAll(
		`senior management`,
		`manager`,
	)

	startDatePatterns = compileAll(
		`start date`,
		`when.*start`,
		`hire date`,
		`joined`,
	)

	scheduleCallPatterns = compileAll(
		`schedule.*call`,
		`book.*call`,
		`set.*up.*call`,
		`schedule.*meeting`,
		`book.*meeting`,
		`set.*up.*meeting`,
		`arrange.*call`,
		`arrange.*meeting`,
		`calendar`,
		`appointment`,
		`book.*time`,
		`schedule.*time`,
		`when.*available`,
		`availability`,
		`when.*can.*meet`,
		`when.*can.*talk`,
		`when.*can.*call`,
		`when.*free`,
		`free.*time`,
		`available.*time`,
		`setup.*call`,
		`talk.*to.*hr`,
		`speak.*with.*hr`,
		`meet.*with.*hr`,
		`available.*slot`,
		`free.*slot`,
		`time.*slot`,
	)

	emailHRPatterns = compileAll(
		`can.*i.*take`,
		`is.*there.*way`,
		`how.*can.*i.*get`,
		`need.*to.*request`,
		`want.*to.*request`,
		`need.*help.*with`,
		`need.*assistance`,
		`request.*for`,
		`apply.*for`,
		`extra.*day`,
		`more.*days.*off`,
		`additional.*pto`,
		`exception.*to`,
		`special.*request`,
		`can.*you.*help.*me`,
		`is.*it.*possible`,
		`would.*it.*be.*possible`,
	)

	healthInsurancePatterns = compileAll(
		`health.*insurance`,
		`medical.*insurance`,
		`health.*plan`,
		`insurance.*option`,
		`health.*benefit`,
		`medical.*plan`,
		`health.*coverage`,
		`insurance.*cost`,
		`health.*care`,
		`medical.*benefit`,
		`hmo`,
		`ppo`,
		`hdhp`,
		`deductible`,
		`premium`,
	)

	remoteChoicePatterns = compileAll(
		`^remote$`,
		`^remotely$`,
		`^remote work`,
		`^work.*remote`,
		`i.?ll.*work.*remote`,
		`i.?ll.*remote`,
		`^onsite$`,
		`^on-site$`,
		`^on site$`,
		`^office$`,
		`i.?ll.*onsite`,
		`i.?ll.*office`,
		`at.*office`,
		`in.*office`,
	)

	w2Patterns = compileAll(
		`w-?2`,
		`tax.*form`,
		`tax.*document`,
		`wage.*statement`,
		`tax.*statement`,
	)

	updateFieldPatterns = compileAll(
		`change.*address`,
		`update.*address`,
		`new address`,
		`change.*my`,
		`update.*my`,
		`modify.*my`,
		`edit.*my`,
		`mov(?:e|ed|ing)\s+to`,
		`relocated\s+to`,
		`transferred\s+to`,
		`reassigned`,
		`update.*that.*to`,
		`change.*that.*to`,
		`update.*it.*to`,
		`change.*it.*to`,
		`set.*to`,
		`make.*it`,
	)
)

// Hybrid co-occurrence terms: a location-change or remote-work mention
// combined with permission phrasing means the utterance both asks for
// information and needs HR approval. Hybrid outranks every other group.
var (
	hybridPermission = []string{"can i", "permission", "allowed to", "approval"}
	hybridSubject    = []string{"move", "relocate", "work remote", "work from", "remote"}
)

func matchHybrid(text string) bool {
	permission := false
	for _, term := range hybridPermission {
		if strings.Contains(text, term) {
			permission = true
			break
		}
	}
	if !permission {
		return false
	}
	for _, term := range hybridSubject {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Update-request value extraction. Field names in slots are canonical
// (matching the mutator whitelist), values stay raw for the mutator to
// coerce and validate.
var (
	contextualUpdateRegex = regexp.MustCompile(`(?:update|change|set|make)\s+(?:that|it)\s+to\s+([a-z\s]+?)(?:\.|$|,)`)
	moveToRegex           = regexp.MustCompile(`mov(?:e|ing)\s+to\s+([a-z\s]+?)(?:\.|$|,|\sand\s)`)
	relocatedToRegex      = regexp.MustCompile(`(?:relocated|transferred|reassigned)\s+to\s+([a-z\s]+?)(?:\.|$|,)`)
	townUpdateRegex       = regexp.MustCompile(`(?:change|update|set|modify)\s+(?:my\s+)?(?:address|town|city|location)\s+to\s+([a-z\s]+?)(?:\.|$|,)`)
	teamUpdateRegex       = regexp.MustCompile(`(?:change|update|set|modify)\s+(?:my\s+)?team\s+to\s+([a-z\s]+?)(?:\.|$|,)`)
	salaryUpdateRegex     = regexp.MustCompile(`(?:change|update|set|modify)\s+(?:my\s+)?salary\s+to\s+\$?([0-9,]+(?:\.[0-9]+)?)`)
	bonusUpdateRegex      = regexp.MustCompile(`(?:change|update|set|modify)\s+(?:my\s+)?bonus\s+(?:%\s+|percent(?:age)?\s+)?to\s+([0-9.]+)`)
	daysOffUpdateRegex    = regexp.MustCompile(`(?:change|update|set|modify)\s+(?:my\s+)?(?:days\s+off|pto)\s+to\s+([0-9]+)`)
)

func extractUpdateSlots(text string) Slots {
	type fieldPattern struct {
		field string
		re    *regexp.Regexp
	}
	// Explicit field mentions first, then movement phrasing, then the
	// contextual "change it to X" fallback (which defaults to town).
	ordered := []fieldPattern{
		{"team", teamUpdateRegex},
		{"salary", salaryUpdateRegex},
		{"bonus_percent", bonusUpdateRegex},
		{"days_off_remaining", daysOffUpdateRegex},
		{"town", townUpdateRegex},
		{"town", moveToRegex},
		{"town", relocatedToRegex},
		{"town", contextualUpdateRegex},
	}
	for _, fp := range ordered {
		if m := fp.re.FindStringSubmatch(text); m != nil {
			return Slots{
				SlotField: fp.field,
				SlotValue: strings.TrimSpace(m[1]),
			}
		}
	}
	return nil
}

// matchUpdateWithValue gates the high-priority update group: it claims an
// utterance only when a field and value actually extract.
func matchUpdateWithValue(text string) bool {
	return extractUpdateSlots(text) != nil
}

func extractRemoteChoice(text string) Slots {
	if strings.Contains(text, "remote") {
		return Slots{SlotChoice: "remote"}
	}
	return Slots{SlotChoice: "on-site"}
}
