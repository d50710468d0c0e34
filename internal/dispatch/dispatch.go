// Package dispatch implements the DATA_REQUEST directives the model can
// embed in its answers to ask for additional financial data.
package dispatch

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/report"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"gorm.io/gorm"
)

// Kind is a supported request type.
type Kind string

const (
	KindActivePeriod     Kind = "active_period"
	KindPeriod           Kind = "period"
	KindPeriodByDate     Kind = "period_by_date"
	KindRange            Kind = "range"
	KindLastDays         Kind = "last_days"
	KindMonth            Kind = "month"
	KindYear             Kind = "year"
	KindRecentPeriods    Kind = "recent_periods"
	KindDatabaseOverview Kind = "database_overview"
)

// Clamps for the numeric parameters. Out-of-range days and limits are
// clamped, out-of-range months and years are rejected.
const (
	DefaultDays  = 30
	MaxDays      = 365
	DefaultLimit = 6
	MaxLimit     = 24
	MinYear      = 2000
	MaxYear      = 2100
)

var (
	directivePattern = regexp.MustCompile(`\[\[DATA_REQUEST\s*([^\]]+)\]\]`)
	tokenPattern     = regexp.MustCompile(`(\w+)=("[^"]*"|'[^']*'|\S+)`)
)

// kindAliases maps every accepted type spelling to its Kind.
var kindAliases = map[string]Kind{
	"active_period":     KindActivePeriod,
	"current_period":    KindActivePeriod,
	"active":            KindActivePeriod,
	"current":           KindActivePeriod,
	"period":            KindPeriod,
	"period_by_date":    KindPeriodByDate,
	"period_on":         KindPeriodByDate,
	"range":             KindRange,
	"last_days":         KindLastDays,
	"recent_days":       KindLastDays,
	"month":             KindMonth,
	"year":              KindYear,
	"recent_periods":    KindRecentPeriods,
	"database_overview": KindDatabaseOverview,
}

// Request is one parsed directive. Type holds the raw type string, it
// is resolved against the aliases during dispatch.
type Request struct {
	Raw    string            `json:"raw"`
	Type   string            `json:"type"`
	Params map[string]string `json:"params,omitempty"`
}

// Envelope is the reply injected into the follow-up prompt.
type Envelope struct {
	Tool        string    `json:"tool"`
	RequestedAt time.Time `json:"requested_at"`
	Request     Request   `json:"request"`
	Error       string    `json:"error,omitempty"`
	Data        any       `json:"data,omitempty"`
}

// Find extracts the first directive from a model answer. Additional
// directives in the same answer are ignored.
func Find(text string) (Request, bool) {
	match := directivePattern.FindStringSubmatch(text)
	if match == nil {
		return Request{}, false
	}

	params := parseParams(strings.TrimSpace(match[1]))
	req := Request{
		Raw:    match[0],
		Type:   params["type"],
		Params: params,
	}
	delete(params, "type")

	return req, true
}

// Strip removes all directives from a model answer.
func Strip(text string) string {
	return strings.TrimSpace(directivePattern.ReplaceAllString(text, ""))
}

// parseParams reads the directive payload. JSON objects are preferred,
// everything else is parsed as key=value tokens. Keys are lowercased.
func parseParams(payload string) map[string]string {
	params := map[string]string{}

	if strings.HasPrefix(payload, "{") {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(payload), &decoded); err == nil {
			for key, value := range decoded {
				params[strings.ToLower(key)] = stringify(value)
			}

			return params
		}
	}

	for _, match := range tokenPattern.FindAllStringSubmatch(payload, -1) {
		value := match[2]
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') {
			value = value[1 : len(value)-1]
		}

		params[strings.ToLower(match[1])] = value
	}

	return params
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Dispatch resolves one directive against the database. Failures are
// reported inside the envelope so the model can explain them, never as
// an error to the caller.
func Dispatch(db *gorm.DB, req Request, now time.Time) Envelope {
	envelope := Envelope{
		Tool:        "DATA_REQUEST",
		RequestedAt: now.UTC(),
		Request:     req,
	}

	data, err := resolve(db, req, now)
	if err != nil {
		envelope.Error = err.Error()
		return envelope
	}

	envelope.Data = data
	return envelope
}

func resolve(db *gorm.DB, req Request, now time.Time) (any, error) {
	if req.Type == "" {
		return nil, fmt.Errorf("the request is missing its type")
	}

	kind, ok := kindAliases[strings.ToLower(req.Type)]
	if !ok {
		return nil, fmt.Errorf("%q is not a supported request type", req.Type)
	}

	switch kind {
	case KindActivePeriod:
		return report.Context(db, uuid.Nil, now)

	case KindPeriod:
		id, err := uuidParam(req, "period_id", "id")
		if err != nil {
			return nil, err
		}

		return report.Context(db, id, now)

	case KindPeriodByDate:
		date, err := dateParam(req, "date", "on")
		if err != nil {
			return nil, err
		}

		period, err := models.PeriodByDate(db, date)
		if err != nil {
			return nil, err
		}

		return report.Context(db, period.ID, now)

	case KindRange:
		start, err := dateParam(req, "start", "start_date")
		if err != nil {
			return nil, err
		}

		end, err := dateParam(req, "end", "end_date")
		if err != nil {
			return nil, err
		}

		if end.Before(start) {
			return nil, fmt.Errorf("the range ends before it starts")
		}

		return report.Range(db, start, end, now)

	case KindLastDays:
		days := clampedIntParam(req, "days", DefaultDays, 1, MaxDays)
		end := types.DateOf(now)

		return report.Range(db, end.AddDate(0, 0, -(days-1)), end, now)

	case KindMonth:
		month, err := monthParam(req)
		if err != nil {
			return nil, err
		}

		return report.Range(db, month.First(), month.Last(), now)

	case KindYear:
		year, err := yearParam(req)
		if err != nil {
			return nil, err
		}

		return report.BuildYearExport(db, year, now)

	case KindRecentPeriods:
		limit := clampedIntParam(req, "limit", DefaultLimit, 1, MaxLimit)

		return report.RecentPeriodSummaries(db, limit)

	case KindDatabaseOverview:
		return report.Overview(db)
	}

	return nil, fmt.Errorf("%q is not a supported request type", req.Type)
}

func param(req Request, names ...string) (string, bool) {
	for _, name := range names {
		if value, ok := req.Params[name]; ok && value != "" {
			return value, true
		}
	}

	return "", false
}

func uuidParam(req Request, names ...string) (uuid.UUID, error) {
	value, ok := param(req, names...)
	if !ok {
		return uuid.Nil, fmt.Errorf("the request is missing the %q parameter", names[0])
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%q is not a valid id", value)
	}

	return id, nil
}

func dateParam(req Request, names ...string) (types.Date, error) {
	value, ok := param(req, names...)
	if !ok {
		return types.Date{}, fmt.Errorf("the request is missing the %q parameter", names[0])
	}

	date, err := types.ParseDate(value)
	if err != nil {
		return types.Date{}, fmt.Errorf("%q is not a valid date, use YYYY-MM-DD", value)
	}

	return date, nil
}

func clampedIntParam(req Request, name string, fallback, min, max int) int {
	value, ok := param(req, name)
	if !ok {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	if parsed < min {
		return min
	}
	if parsed > max {
		return max
	}

	return parsed
}

// monthParam accepts either month=YYYY-MM or the year and month as two
// separate parameters.
func monthParam(req Request) (types.Month, error) {
	if value, ok := param(req, "month"); ok && strings.Contains(value, "-") {
		month, err := types.ParseMonth(value)
		if err != nil {
			return types.Month{}, fmt.Errorf("%q is not a valid month, use YYYY-MM", value)
		}

		return month, nil
	}

	year, err := yearParam(req)
	if err != nil {
		return types.Month{}, err
	}

	value, ok := param(req, "month")
	if !ok {
		return types.Month{}, fmt.Errorf("the request is missing the %q parameter", "month")
	}

	monthNumber, err := strconv.Atoi(value)
	if err != nil || monthNumber < 1 || monthNumber > 12 {
		return types.Month{}, fmt.Errorf("%q is not a valid month number", value)
	}

	return types.NewMonth(year, time.Month(monthNumber)), nil
}

func yearParam(req Request) (int, error) {
	value, ok := param(req, "year")
	if !ok {
		return 0, fmt.Errorf("the request is missing the %q parameter", "year")
	}

	year, err := strconv.Atoi(value)
	if err != nil || year < MinYear || year > MaxYear {
		return 0, fmt.Errorf("%q is not a valid year between %d and %d", value, MinYear, MaxYear)
	}

	return year, nil
}
