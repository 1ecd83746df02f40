package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		query string
		want  Language
	}{
		{"what is the weather today", LangEN},
		{"今天天气怎么样", LangZH},
		{"today 今天 mixed script", LangZH},
		{"12345", LangEN},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DetectLanguage(c.query), "query=%q", c.query)
	}
}
