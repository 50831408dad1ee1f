package sx

import "strings"

// flowParams renders the arguments of a flow control tag. Every attribute
// block gives one list, with one item per attribute group.
func (g *Generator) flowParams(args [][]AttrGroup) ([][]string, error) {
	params := make([][]string, 0, len(args))
	for _, groups := range args {
		var items []string
		for _, group := range groups {
			s, err := g.plainString(group)
			if err != nil {
				return nil, err
			}
			items = append(items, s)
		}
		params = append(params, items)
	}
	return params, nil
}

// buildFlow renders @when, @unless and @while.
//
// The first argument block is the name of the condition variable followed by
// statements run once before the first test. The statements of the following
// blocks run after every rendering of the body.
func (g *Generator) buildFlow(ltag string, e *Element) ([]Fragment, error) {
	params, err := g.flowParams(e.Args)
	if err != nil {
		return nil, err
	}
	if len(params) == 0 || len(params[0]) == 0 {
		return nil, nil
	}

	name := strings.TrimSpace(params[0][0])
	for _, stmt := range params[0][1:] {
		if err := g.exec(e.Pos, stmt); err != nil {
			return nil, err
		}
	}

	cond := func() bool {
		return truthy(g.vm.Get(name))
	}

	var frags []Fragment
	body := func() error {
		f, err := g.buildChildren(e.Children)
		if err != nil {
			return err
		}
		frags = append(frags, f...)
		for _, update := range params[1:] {
			for _, stmt := range update {
				if err := g.exec(e.Pos, stmt); err != nil {
					return err
				}
			}
		}
		return nil
	}

	switch ltag {
	case "@when":
		if cond() {
			err = body()
		}
	case "@unless":
		if !cond() {
			err = body()
		}
	case "@while":
		for err == nil && cond() {
			if err = g.ctx.Err(); err == nil {
				err = body()
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return frags, nil
}
