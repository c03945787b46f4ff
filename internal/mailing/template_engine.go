// Package mailing renders and sends the dashboard's customer emails using
// the Liquid template language, with tracked links back to /track.
package mailing

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/osteele/liquid"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// TemplateService renders Liquid templates. Parsed templates are kept per
// cache key for the life of the service.
type TemplateService struct {
	engine *liquid.Engine
	parsed sync.Map // cache key -> *liquid.Template
}

// NewTemplateService returns a service with the mail filters registered.
func NewTemplateService() *TemplateService {
	ts := &TemplateService{engine: liquid.NewEngine()}
	for name, fn := range mailFilters {
		ts.engine.RegisterFilter(name, fn)
	}
	return ts
}

// mailFilters extend the standard Liquid filters:
//
//	{{ name | default: "there" }}   blank values fall back
//	{{ vehicle | slug }}            "AOE Volt" -> "aoe-volt"
//	{{ name | first_name }}         "Ana Ruiz" -> "Ana"
var mailFilters = map[string]interface{}{
	"default": func(value interface{}, fallback string) interface{} {
		if value == nil || fmt.Sprint(value) == "" {
			return fallback
		}
		return value
	},
	"slug": func(s string) string {
		return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	},
	"first_name": func(s string) string {
		first, _, _ := strings.Cut(strings.TrimSpace(s), " ")
		return first
	},
}

// Parse reports syntax errors in src without caching it.
func (ts *TemplateService) Parse(src string) error {
	if _, err := ts.engine.ParseString(src); err != nil {
		return err
	}
	return nil
}

// Render executes src with bindings. A non-empty cacheKey reuses the parsed
// form on later calls, so a key must always name the same source.
func (ts *TemplateService) Render(cacheKey, src string, bindings map[string]interface{}) (string, error) {
	tpl, err := ts.template(cacheKey, src)
	if err != nil {
		return "", err
	}
	out, rerr := tpl.RenderString(bindings)
	if rerr != nil {
		return "", fmt.Errorf("render template %s: %w", cacheKey, rerr)
	}
	return out, nil
}

func (ts *TemplateService) template(cacheKey, src string) (*liquid.Template, error) {
	if cacheKey != "" {
		if t, ok := ts.parsed.Load(cacheKey); ok {
			return t.(*liquid.Template), nil
		}
	}
	tpl, err := ts.engine.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", cacheKey, err)
	}
	if cacheKey != "" {
		ts.parsed.Store(cacheKey, tpl)
	}
	return tpl, nil
}
