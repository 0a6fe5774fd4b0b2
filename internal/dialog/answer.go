package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dempseyco/hr-assistant-go/internal/employee"
	"github.com/dempseyco/hr-assistant-go/internal/intent"
)

// currencyPrinter renders grouped US currency ("$95,000.00").
var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

func formatCurrency(v float64) string {
	return currencyPrinter.Sprintf("$%.2f", v)
}

// formatPercent renders without trailing zeros: 12.5 -> "12.5%", 13 -> "13%".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// livingWords distinguishes "where do I live" from "where do I work" for
// the location intent.
var livingWords = []string{"live", "home", "residing", "based"}

// answerFor renders the deterministic templated sentence for an
// informational intent and reports which record fields it consulted.
// It is a pure function of (intent, utterance, record).
func answerFor(it intent.Intent, utterance string, rec employee.Record) (string, []string) {
	name := rec.FirstName

	switch it {
	case intent.Salary:
		return fmt.Sprintf("%s's salary is %s per year.", name, formatCurrency(rec.Salary)),
			[]string{"salary"}

	case intent.DaysOff:
		return fmt.Sprintf("%s has %d days off remaining this year.", name, rec.DaysOffRemaining),
			[]string{"days_off_remaining"}

	case intent.Bonus:
		return fmt.Sprintf("%s's bonus percentage is %s.", name, formatPercent(rec.BonusPercent)),
			[]string{"bonus_percent"}

	case intent.Location:
		return locationAnswer(utterance, rec), []string{"town", "remote_status"}

	case intent.Team:
		return fmt.Sprintf("%s is on the %s team.", name, rec.Team), []string{"team"}

	case intent.Seniority:
		if rec.SeniorManagement {
			return fmt.Sprintf("%s is part of senior management.", name), []string{"senior_management"}
		}
		return fmt.Sprintf("%s is not part of senior management.", name), []string{"senior_management"}

	case intent.StartDate:
		return fmt.Sprintf("%s started on %s.", name, rec.StartDate), []string{"start_date"}
	}

	return "", nil
}

func locationAnswer(utterance string, rec employee.Record) string {
	name := rec.FirstName
	if rec.Town == "" {
		return fmt.Sprintf("%s's location information is not available.", name)
	}

	lower := strings.ToLower(utterance)
	for _, word := range livingWords {
		if strings.Contains(lower, word) {
			return fmt.Sprintf("%s lives in %s.", name, rec.Town)
		}
	}

	if rec.RemoteStatus == employee.RemoteStatusRemote {
		return fmt.Sprintf("%s works remotely from %s.", name, rec.Town)
	}
	return fmt.Sprintf("%s works on-site in %s.", name, rec.Town)
}
