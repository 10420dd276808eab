package nicehash

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// EncodeQuery renders a parameter struct as a query string. Every declared
// field is emitted in declaration order, including the ones left unset, which
// are sent as "name=". The platform has always been called this way, so the
// empty parameters stay.
func EncodeQuery(params any) (string, error) {
	if params == nil {
		return "", nil
	}

	values, err := query.Values(params)
	if err != nil {
		return "", errors.Wrap(err, "encode query")
	}

	names := fieldNames(reflect.TypeOf(params))
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(strings.Join(values[name], ",")))
	}

	return strings.Join(parts, "&"), nil
}

func fieldNames(t reflect.Type) []string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var names []string
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" && !sf.Anonymous {
			continue
		}

		tag := sf.Tag.Get("url")
		if tag == "-" {
			continue
		}

		name, _, _ := strings.Cut(tag, ",")
		if sf.Anonymous && name == "" {
			names = append(names, fieldNames(sf.Type)...)
			continue
		}
		if name == "" {
			name = sf.Name
		}

		names = append(names, name)
	}

	return names
}

// Decimal is an optional decimal query parameter. The zero value is sent
// empty.
type Decimal struct {
	d   decimal.Decimal
	set bool
}

func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{d: d, set: true}
}

func (d Decimal) EncodeValues(key string, v *url.Values) error {
	if d.set {
		v.Set(key, d.d.String())
	}
	return nil
}
