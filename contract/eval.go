// Copyright 2015 The go-DATx Authors
// This file is part of the go-DATx library.
//
// The go-DATx library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-DATx library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-DATx library. If not, see <http://www.gnu.org/licenses/>.

// Package contract implements the reverse-Polish stack-machine evaluator
// used to turn a Contract block plus caller-supplied arguments into a
// ContractResult.
package contract

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kuba00739/blockchain/chain"
)

// Eval evaluates c right-to-left over a value stack, consuming args
// right-to-left on each Arg token. The operand order for a binary Operation
// is (a, b) = (first pop, second pop), and the result is a OP b — preserved
// deliberately non-commutative-looking per the source's own behavior (see
// DESIGN.md).
func Eval(c chain.Contract, args []float64) (float64, error) {
	var stack []float64
	argIdx := len(args) - 1

	push := func(v float64) { stack = append(stack, v) }
	pop := func() (float64, error) {
		if len(stack) == 0 {
			return 0, fmt.Errorf("%w: missing operand", chain.ErrContractEval)
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for i := len(c) - 1; i >= 0; i-- {
		item := c[i]
		switch item.Kind {
		case chain.RevPolishNumber:
			push(item.Number)
		case chain.RevPolishArg:
			if argIdx < 0 {
				return 0, fmt.Errorf("%w: missing argument", chain.ErrContractEval)
			}
			push(args[argIdx])
			argIdx--
		case chain.RevPolishOperation:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			b, err := pop()
			if err != nil {
				return 0, err
			}
			result, err := apply(item.Operation, a, b)
			if err != nil {
				return 0, err
			}
			push(result)
		default:
			return 0, fmt.Errorf("%w: unknown RevPolish kind %d", chain.ErrContractEval, item.Kind)
		}
	}

	if len(stack) == 0 {
		return 0, fmt.Errorf("%w: empty result stack", chain.ErrContractEval)
	}
	return stack[len(stack)-1], nil
}

func apply(op byte, a, b float64) (float64, error) {
	switch op {
	case '+':
		return a + b, nil
	case '-':
		return a - b, nil
	case '*':
		return a * b, nil
	case '/':
		if b == 0.0 {
			return 0, fmt.Errorf("%w: division by zero", chain.ErrContractEval)
		}
		return a / b, nil
	case '%':
		if b == 0.0 {
			return 0, fmt.Errorf("%w: modulo by zero", chain.ErrContractEval)
		}
		return math.Mod(a, b), nil
	case 'p':
		return math.Pow(a, b), nil
	default:
		return 0, fmt.Errorf("%w: unknown operation %q", chain.ErrContractEval, op)
	}
}

// ClassifyToken implements the client's `CONT` token classification rule:
// an operation character, the literal "a" for an Arg, or else a decimal
// float64 Number.
func ClassifyToken(tok string) (chain.RevPolish, error) {
	if tok == "a" {
		return chain.Arg(), nil
	}
	if len(tok) > 0 {
		switch tok[0] {
		case '+', '-', '*', '/', '%', 'p':
			return chain.Operation(tok[0]), nil
		}
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return chain.RevPolish{}, fmt.Errorf("%w: %q is not a number, operation or arg", chain.ErrContractEval, tok)
	}
	return chain.Number(f), nil
}
