package template

import (
	"fmt"
	"html/template"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/yargevad/filepathx"
)

const (
	viewsDir    = "views"
	layoutsDir  = "layouts"
	partialsDir = "partials"
	ext         = ".html"
)

// Context is the value every template is executed with.
type Context interface {
	GinContext() *gin.Context
}

type Manager[C Context] struct {
	re      multitemplate.Renderer
	dir     string
	funcs   template.FuncMap
	mux     sync.Mutex
	layouts map[string]bool
}

func NewManager[C Context](re multitemplate.Renderer) *Manager[C] {
	return &Manager[C]{
		re:      re,
		dir:     "templates",
		funcs:   template.FuncMap{},
		layouts: map[string]bool{},
	}
}

func (s *Manager[C]) WithDir(dir string) *Manager[C] {
	s.dir = dir
	return s
}

// WithHelper exposes every exported method of h as a template function
// named after the method with a lowercase first letter.
func (s *Manager[C]) WithHelper(h any) *Manager[C] {
	v := reflect.ValueOf(h)
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		s.funcs[lowerFirst(m.Name)] = v.Method(i).Interface()
	}
	return s
}

func (s *Manager[C]) WithFuncs(f template.FuncMap) *Manager[C] {
	for k, v := range f {
		s.funcs[k] = v
	}
	return s
}

func (s *Manager[C]) Funcs() template.FuncMap {
	return s.funcs
}

type Views[C Context] struct {
	m     *Manager[C]
	names []string
}

func (s *Manager[C]) RegisterViews(pattern string) (*Views[C], error) {
	files, err := filepathx.Glob(filepath.Join(s.dir, viewsDir, pattern+ext))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to glob views %v", pattern)
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no views found for %v", pattern)
	}
	var names []string
	for _, f := range files {
		rel, err := filepath.Rel(filepath.Join(s.dir, viewsDir), f)
		if err != nil {
			return nil, err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), ext))
	}
	return &Views[C]{m: s, names: names}, nil
}

func (s *Manager[C]) MustRegisterViews(pattern string) *Views[C] {
	v, err := s.RegisterViews(pattern)
	if err != nil {
		panic(err)
	}
	return v
}

// WithLayout adds every view to the renderer wrapped into the named layout
// together with all partials.
func (s *Views[C]) WithLayout(layout string) Builder[C] {
	s.m.mux.Lock()
	defer s.m.mux.Unlock()
	partials, err := filepathx.Glob(filepath.Join(s.m.dir, partialsDir, "**", "*"+ext))
	if err != nil {
		panic(errors.Wrap(err, "failed to glob partials"))
	}
	for _, name := range s.names {
		files := []string{filepath.Join(s.m.dir, layoutsDir, layout+ext)}
		files = append(files, partials...)
		files = append(files, filepath.Join(s.m.dir, viewsDir, name+ext))
		s.m.re.AddFromFilesFuncs(templateName(layout, name), s.m.funcs, files...)
	}
	return &builder[C]{layout: layout, names: s.names}
}

type Builder[C Context] interface {
	Build(name string) *Template[C]
}

type builder[C Context] struct {
	layout string
	names  []string
}

func (s *builder[C]) Build(name string) *Template[C] {
	for _, n := range s.names {
		if n == name {
			return &Template[C]{name: templateName(s.layout, name)}
		}
	}
	panic(fmt.Sprintf("view %v is not registered", name))
}

type Template[C Context] struct {
	name string
}

func (s *Template[C]) Name() string {
	return s.name
}

func (s *Template[C]) HTML(code int, ctx C) {
	ctx.GinContext().HTML(code, s.name, ctx)
}

func templateName(layout, view string) string {
	return layout + "/" + view
}

func lowerFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
