package model

import (
	"regexp"
	"sync"
)

var patterns sync.Map // string -> *regexp.Regexp

// CompilePattern compiles a schema pattern once per process. Builders call it
// so a bad pattern fails the build; validators reuse the cached result.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patterns.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	actual, _ := patterns.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}
