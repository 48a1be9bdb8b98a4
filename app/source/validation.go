package source

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	validFilterFields  = []interface{}{"category", "text"}
	validFilterMatches = []interface{}{"contains", "prefix", "exact"}
)

// Validate checks every configured source.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Sources, validation.Required.Error("at least one source is required")),
	)
}

func (s Source) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Files, validation.Required.Error("at least one file is required")),
		validation.Field(&s.RawURL,
			validation.When(s.Dir == "", validation.Required.Error("raw_url or dir is required")),
			is.URL),
		validation.Field(&s.URL, is.URL),
		validation.Field(&s.Filters),
	)
}

func (f File) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Options),
		validation.Field(&f.Filters),
	)
}

func (o ParseOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.MaxHeadingLevel, validation.Required, validation.Min(1), validation.Max(6)),
		validation.Field(&o.MinHeadingLevel, validation.Min(1), validation.Max(6),
			validation.By(func(value interface{}) error {
				minLevel, _ := value.(int)
				if minLevel != 0 && minLevel < o.MaxHeadingLevel {
					return errors.New("must not be shallower than max_heading_level")
				}
				return nil
			})),
	)
}

func (f Filter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Field, validation.Required, validation.In(validFilterFields...)),
		validation.Field(&f.Match, validation.In(validFilterMatches...)),
		validation.Field(&f.Includes, validation.By(func(value interface{}) error {
			if len(f.Includes) == 0 && len(f.Excludes) == 0 {
				return errors.New("filter must have at least one include or exclude rule")
			}
			return nil
		})),
	)
}
