package bind

import (
	"net/http"

	perr "tasksync/internal/platform/errors"

	"github.com/go-viper/mapstructure/v2"
)

// ParseQuery decodes the query string into T using `query` struct tags, then validates it.
// Repeated keys keep the first value; strings are weakly converted to ints and bools
func ParseQuery[T any](r *http.Request) (T, error) {
	var dst T
	raw := map[string]any{}
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 && vs[0] != "" {
			raw[k] = vs[0]
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "query",
		WeaklyTypedInput: true,
		Result:           &dst,
	})
	if err != nil {
		return dst, perr.Wrap(err, perr.ErrorCodeUnknown, "query decoder")
	}
	if err := dec.Decode(raw); err != nil {
		var zero T
		return zero, perr.Newf(perr.ErrorCodeValidation, "invalid query: %v", err)
	}
	if err := Validate(dst); err != nil {
		var zero T
		return zero, err
	}
	return dst, nil
}
