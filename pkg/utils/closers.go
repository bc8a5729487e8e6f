package utils

import (
	"fmt"
)

type NamedCloser struct {
	Name  string
	Close func() error
}

type NamedClosers []NamedCloser

func (closers *NamedClosers) Add(name string, close func() error) {
	*closers = append(*closers, NamedCloser{Name: name, Close: close})
}

type CloseOpt struct {
	ReverseOrder bool
	Output       func(...interface{})
	ErrorOutput  func(...interface{})
}

// Close runs every closer, reporting each result through opt. The first
// error is returned.
func (closers NamedClosers) Close(opt *CloseOpt) error {
	if opt == nil {
		opt = &CloseOpt{}
	}
	if opt.Output == nil {
		opt.Output = func(...interface{}) {}
	}
	if opt.ErrorOutput == nil {
		opt.ErrorOutput = func(...interface{}) {}
	}

	var first error
	close := func(c *NamedCloser) {
		err := c.Close()
		if err != nil {
			opt.ErrorOutput(fmt.Sprintf("Fail to close %s error=%s", c.Name, err))
			if first == nil {
				first = err
			}
		} else {
			opt.Output(fmt.Sprintf("Closed %s", c.Name))
		}
	}

	if opt.ReverseOrder {
		for i := len(closers) - 1; i >= 0; i-- {
			close(&closers[i])
		}
	} else {
		for i := range closers {
			close(&closers[i])
		}
	}
	return first
}
