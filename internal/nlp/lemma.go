package nlp

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// ErrNoLemma is returned when a token has no usable lemma.
var ErrNoLemma = errors.New("no lemma")

// Lemmatizer maps a token to its dictionary form.
type Lemmatizer interface {
	Lemma(token string) (string, error)
}

// GolemLemmatizer looks tokens up in the golem English dictionary.
type GolemLemmatizer struct {
	l *golem.Lemmatizer
}

func NewGolemLemmatizer() (*GolemLemmatizer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load lemma dictionary: %w", err)
	}
	return &GolemLemmatizer{l: l}, nil
}

func (g *GolemLemmatizer) Lemma(token string) (string, error) {
	if !strings.ContainsFunc(token, unicode.IsLetter) {
		return token, nil
	}
	lemma := strings.TrimSpace(g.l.Lemma(token))
	if lemma == "" {
		return "", fmt.Errorf("%w: %q", ErrNoLemma, token)
	}
	return lemma, nil
}
