// Copyright 2024 The TBNExplorer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"regexp"
	"strconv"

	"github.com/Knetic/govaluate"
	"github.com/cpmech/gosl/chk"
)

// exprMarker matches one {{expr}} template marker
var exprMarker = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// EvalExpression evaluates one f64 arithmetic expression over the supplied
// variables. Only literals, identifiers, parentheses and the operators
// + - * / ** are meaningful; identifiers resolve exclusively to the given
// variables, never to process state
func EvalExpression(expr string, variables map[string]float64) (val float64, usedVars []string, err error) {
	ev, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return 0, nil, chk.Err("invalid expression %q: %v", expr, err)
	}
	params := make(map[string]interface{})
	for _, name := range ev.Vars() {
		v, ok := variables[name]
		if !ok {
			return 0, nil, chk.Err("template variable %q not provided", name)
		}
		params[name] = v
		usedVars = append(usedVars, name)
	}
	res, err := ev.Evaluate(params)
	if err != nil {
		return 0, nil, chk.Err("cannot evaluate expression %q: %v", expr, err)
	}
	f, ok := res.(float64)
	if !ok {
		return 0, nil, chk.Err("expression %q does not evaluate to a number", expr)
	}
	return f, usedVars, nil
}

// substituteMarkers replaces every {{expr}} marker in line by the evaluated
// value, recording the variables that were used
func substituteMarkers(line string, variables, used map[string]float64) (out string, err error) {
	out = line
	for {
		loc := exprMarker.FindStringSubmatchIndex(out)
		if loc == nil {
			return
		}
		expr := out[loc[2]:loc[3]]
		val, usedVars, e := EvalExpression(expr, variables)
		if e != nil {
			return "", e
		}
		for _, name := range usedVars {
			used[name] = variables[name]
		}
		out = out[:loc[0]] + strconv.FormatFloat(val, 'g', -1, 64) + out[loc[1]:]
	}
}
