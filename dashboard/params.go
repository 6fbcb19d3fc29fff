package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pivolan/marathon_analyzer/analysis"
)

var ErrBadParam = errors.New("invalid query parameter")

var validate = validator.New()

// query is the parameter surface shared by the page, charts and API.
type query struct {
	Gender    string `validate:"oneof=male female all"`
	From      int    `validate:"gte=0"`
	To        int    `validate:"gte=0"`
	Page      int    `validate:"gte=1,lte=1000000"`
	Size      int    `validate:"gte=1,lte=100"`
	TopN      int    `validate:"gte=1,lte=1000"`
	Threshold int    `validate:"gte=0"`
	Plot      string `validate:"oneof=top population"`
}

func (s *Server) parseQuery(r *http.Request) (query, error) {
	v := r.URL.Query()
	q := query{
		Gender:    analysis.GenderAll,
		From:      s.opts.YearFrom,
		To:        s.opts.YearTo,
		Page:      1,
		Size:      s.opts.PageSize,
		TopN:      s.opts.TopN,
		Threshold: s.opts.Threshold,
		Plot:      analysis.ViewTop,
	}
	if g := strings.ToLower(strings.TrimSpace(v.Get("gender"))); g != "" {
		q.Gender = g
	}
	if p := strings.TrimSpace(v.Get("plot")); p != "" {
		q.Plot = p
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"from", &q.From},
		{"to", &q.To},
		{"page", &q.Page},
		{"size", &q.Size},
		{"n", &q.TopN},
		{"threshold", &q.Threshold},
	}
	for _, f := range ints {
		if err := intParam(v, f.name, f.dst); err != nil {
			return q, err
		}
	}

	if err := validate.Struct(q); err != nil {
		return q, fmt.Errorf("%w: %v", ErrBadParam, err)
	}
	if q.From != 0 && q.To != 0 && q.From > q.To {
		return q, fmt.Errorf("%w: from %d is after to %d", ErrBadParam, q.From, q.To)
	}
	return q, nil
}

func intParam(v url.Values, name string, dst *int) error {
	raw := strings.TrimSpace(v.Get(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrBadParam, name, raw)
	}
	*dst = n
	return nil
}

func (q query) params() analysis.Params {
	return analysis.Params{
		Gender:    q.Gender,
		TopN:      q.TopN,
		Threshold: q.Threshold,
		Page:      q.Page,
		PageSize:  q.Size,
	}
}

// dataset is the current snapshot restricted to the requested years.
func (s *Server) dataset(q query) *analysis.Dataset {
	return s.store.Load().Dataset.Between(q.From, q.To)
}

// encode keeps the year range and selectors when building links.
func (q query) encode(overrides map[string]string) string {
	v := url.Values{}
	v.Set("gender", q.Gender)
	v.Set("from", strconv.Itoa(q.From))
	v.Set("to", strconv.Itoa(q.To))
	v.Set("plot", q.Plot)
	v.Set("page", strconv.Itoa(q.Page))
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v.Encode()
}
