package nicehash

import (
	"reflect"
	"time"

	"github.com/pkg/errors"
)

// defaulter is implemented by parameter sets whose unset fields take a
// default, such as a timestamp cursor that means "now".
type defaulter interface {
	setDefaults(now time.Time)
}

// newRequest applies defaults, validates params and body, and renders the
// query string.
func (c *PublicClient) newRequest(method, path string, params, body any) (Request, error) {
	return buildRequest(c.clock.Now(), method, path, params, body)
}

func buildRequest(now time.Time, method, path string, params, body any) (Request, error) {
	if d, ok := params.(defaulter); ok {
		d.setDefaults(now)
	}

	if err := validateStruct(params); err != nil {
		return Request{}, &ParamsError{Path: path, Err: err}
	}
	if err := validateStruct(body); err != nil {
		return Request{}, &ParamsError{Path: path, Err: err}
	}

	q, err := EncodeQuery(params)
	if err != nil {
		return Request{}, &ParamsError{Path: path, Err: err}
	}

	return Request{Method: method, Path: path, Query: q, Body: body}, nil
}

func validateStruct(v any) error {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	return validate.Struct(v)
}

func errMissing(what string) error {
	return errors.Errorf("%s required", what)
}
