// Package catalog defines the fixed set of analytics operations the
// service can execute, and the validation that turns an untrusted raw
// intent into a typed one. The catalog is the single source of truth for
// what is dispatchable: nothing outside it ever reaches storage.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// ParamKind describes how a declared parameter is coerced and checked.
type ParamKind string

const (
	KindIdentifier         ParamKind = "identifier_string"
	KindDateText           ParamKind = "date_text"
	KindDateRangeText      ParamKind = "date_range_text"
	KindNonNegativeInteger ParamKind = "non_negative_integer"
)

// Method names of the five catalog operations.
const (
	MethodTotalVideosCount         = "get_total_videos_count"
	MethodCreatorVideosInPeriod    = "get_creator_videos_count_in_period"
	MethodVideosWithViewsMoreThan  = "get_videos_with_views_more_than"
	MethodViewsGrowthOnDate        = "get_views_growth_on_date"
	MethodVideosWithNewViewsOnDate = "get_videos_with_new_views_on_date"

	// MethodUnknown is the sentinel every unrecognized method normalizes
	// to. It is never dispatched.
	MethodUnknown = "unknown"
)

// Param is a declared parameter of a catalog operation. The description
// is surfaced to the classifier prompt.
type Param struct {
	Name        string
	Kind        ParamKind
	Description string
}

// Descriptor describes one catalog operation: its wire name, a short
// description used in prompts, and its required parameters in order.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
}

var descriptors = []Descriptor{
	{
		Name:        MethodTotalVideosCount,
		Description: "Общее количество видео в системе.",
	},
	{
		Name:        MethodCreatorVideosInPeriod,
		Description: "Количество видео у креатора, опубликованных в заданный период (границы включительно).",
		Params: []Param{
			{Name: "creator_id", Kind: KindIdentifier, Description: "идентификатор креатора, дословно из вопроса"},
			{Name: "period", Kind: KindDateRangeText, Description: "период дословно, как он написан в вопросе"},
		},
	},
	{
		Name:        MethodVideosWithViewsMoreThan,
		Description: "Количество видео, набравших строго больше заданного числа просмотров.",
		Params: []Param{
			{Name: "views_threshold", Kind: KindNonNegativeInteger, Description: "порог просмотров, целое неотрицательное число"},
		},
	},
	{
		Name:        MethodViewsGrowthOnDate,
		Description: "Суммарный прирост просмотров по всем видео за указанную дату.",
		Params: []Param{
			{Name: "date", Kind: KindDateText, Description: "дата дословно, как она написана в вопросе"},
		},
	},
	{
		Name:        MethodVideosWithNewViewsOnDate,
		Description: "Количество видео, получивших новые просмотры за указанную дату.",
		Params: []Param{
			{Name: "date", Kind: KindDateText, Description: "дата дословно, как она написана в вопросе"},
		},
	},
}

// All returns the catalog descriptors in declaration order. The returned
// slice must not be mutated.
func All() []Descriptor {
	return descriptors
}

// Lookup finds a descriptor by exact, case-sensitive name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// RawIntent is the untrusted (method, params) pair parsed from the
// generation service's output. Values are raw strings.
type RawIntent struct {
	Method      string
	Params      map[string]string
	Explanation string
}

// Intent is a validated catalog operation with typed parameters. Only
// values produced by Validate implement it. Date parameters stay as the
// original text: the dispatcher resolves them so that date errors carry
// dispatch-time context.
type Intent interface {
	Method() string
}

// TotalVideosCount counts all video records.
type TotalVideosCount struct{}

func (TotalVideosCount) Method() string { return MethodTotalVideosCount }

// CreatorVideosInPeriod counts a creator's videos published within an
// inclusive date range.
type CreatorVideosInPeriod struct {
	CreatorID  string
	PeriodText string
}

func (CreatorVideosInPeriod) Method() string { return MethodCreatorVideosInPeriod }

// VideosWithViewsMoreThan counts videos whose view count strictly exceeds
// the threshold.
type VideosWithViewsMoreThan struct {
	Threshold int64
}

func (VideosWithViewsMoreThan) Method() string { return MethodVideosWithViewsMoreThan }

// ViewsGrowthOnDate sums the per-snapshot view deltas across one day.
type ViewsGrowthOnDate struct {
	DateText string
}

func (ViewsGrowthOnDate) Method() string { return MethodViewsGrowthOnDate }

// VideosWithNewViewsOnDate counts distinct videos with a positive view
// delta on one day.
type VideosWithNewViewsOnDate struct {
	DateText string
}

func (VideosWithNewViewsOnDate) Method() string { return MethodVideosWithNewViewsOnDate }

// UnknownIntentError reports a method name outside the catalog.
type UnknownIntentError struct {
	Method string
}

func (e *UnknownIntentError) Error() string {
	return fmt.Sprintf("unknown intent method %q", e.Method)
}

// MissingParameterError reports required parameters absent from a raw
// intent. Checked before any type coercion or date parsing.
type MissingParameterError struct {
	Method string
	Params []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("intent %q missing required parameters: %s", e.Method, strings.Join(e.Params, ", "))
}

// InvalidParameterError reports a parameter value that failed coercion or
// a range check.
type InvalidParameterError struct {
	Method string
	Param  string
	Value  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("intent %q parameter %q has invalid value %q: %s", e.Method, e.Param, e.Value, e.Reason)
}

// Validate checks a raw intent against the catalog and constructs the
// typed intent. Method names outside the catalog fail with
// UnknownIntentError; missing parameters are reported together, before
// any coercion; integer parameters must parse and be non-negative.
func Validate(raw RawIntent) (Intent, error) {
	desc, ok := Lookup(raw.Method)
	if !ok {
		return nil, &UnknownIntentError{Method: raw.Method}
	}

	var missing []string
	values := make(map[string]string, len(desc.Params))
	for _, p := range desc.Params {
		v, present := raw.Params[p.Name]
		v = strings.TrimSpace(v)
		if !present || v == "" {
			missing = append(missing, p.Name)
			continue
		}
		values[p.Name] = v
	}
	if len(missing) > 0 {
		return nil, &MissingParameterError{Method: desc.Name, Params: missing}
	}

	switch desc.Name {
	case MethodTotalVideosCount:
		return TotalVideosCount{}, nil

	case MethodCreatorVideosInPeriod:
		return CreatorVideosInPeriod{
			CreatorID:  values["creator_id"],
			PeriodText: values["period"],
		}, nil

	case MethodVideosWithViewsMoreThan:
		v := values["views_threshold"]
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, &InvalidParameterError{
				Method: desc.Name, Param: "views_threshold", Value: v,
				Reason: "not an integer",
			}
		}
		if n < 0 {
			return nil, &InvalidParameterError{
				Method: desc.Name, Param: "views_threshold", Value: v,
				Reason: "must be non-negative",
			}
		}
		return VideosWithViewsMoreThan{Threshold: n}, nil

	case MethodViewsGrowthOnDate:
		return ViewsGrowthOnDate{DateText: values["date"]}, nil

	case MethodVideosWithNewViewsOnDate:
		return VideosWithNewViewsOnDate{DateText: values["date"]}, nil
	}

	// Unreachable while descriptors and this switch stay in sync.
	return nil, &UnknownIntentError{Method: raw.Method}
}
