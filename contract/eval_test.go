package contract_test

import (
	"errors"
	"testing"

	"github.com/kuba00739/blockchain/chain"
	"github.com/kuba00739/blockchain/contract"
)

func TestEval_Addition(t *testing.T) {
	c := chain.Contract{chain.Operation('+'), chain.Number(0), chain.Number(1)}
	got, err := contract.Eval(c, nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != 1 {
		t.Fatalf("got %v, want 1", got)
	}
}

func TestEval_Subtraction(t *testing.T) {
	c := chain.Contract{chain.Operation('-'), chain.Number(10), chain.Number(3)}
	got, err := contract.Eval(c, nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestEval_WithArgs(t *testing.T) {
	c := chain.Contract{chain.Operation('+'), chain.Arg(), chain.Arg()}
	got, err := contract.Eval(c, []float64{5, 2})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestEval_Nested(t *testing.T) {
	// (2 * 3) + 4, expressed the same right-to-left way as the single-op cases.
	c := chain.Contract{
		chain.Operation('+'),
		chain.Operation('*'), chain.Number(2), chain.Number(3),
		chain.Number(4),
	}
	got, err := contract.Eval(c, nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != 10 {
		t.Fatalf("got %v, want 10", got)
	}
}

func TestEval_DivisionByZero(t *testing.T) {
	c := chain.Contract{chain.Operation('/'), chain.Number(10), chain.Number(0)}
	_, err := contract.Eval(c, nil)
	if !errors.Is(err, chain.ErrContractEval) {
		t.Fatalf("Eval division by zero: got %v, want ErrContractEval", err)
	}
}

func TestEval_ModuloByZero(t *testing.T) {
	c := chain.Contract{chain.Operation('%'), chain.Number(10), chain.Number(0)}
	_, err := contract.Eval(c, nil)
	if !errors.Is(err, chain.ErrContractEval) {
		t.Fatalf("Eval modulo by zero: got %v, want ErrContractEval", err)
	}
}

func TestEval_MissingOperand(t *testing.T) {
	c := chain.Contract{chain.Operation('+')}
	_, err := contract.Eval(c, nil)
	if !errors.Is(err, chain.ErrContractEval) {
		t.Fatalf("Eval missing operand: got %v, want ErrContractEval", err)
	}
}

func TestEval_MissingArgument(t *testing.T) {
	c := chain.Contract{chain.Arg()}
	_, err := contract.Eval(c, nil)
	if !errors.Is(err, chain.ErrContractEval) {
		t.Fatalf("Eval missing argument: got %v, want ErrContractEval", err)
	}
}

func TestEval_UnknownOperation(t *testing.T) {
	c := chain.Contract{chain.Operation('x'), chain.Number(1), chain.Number(2)}
	_, err := contract.Eval(c, nil)
	if !errors.Is(err, chain.ErrContractEval) {
		t.Fatalf("Eval unknown operation: got %v, want ErrContractEval", err)
	}
}

func TestEval_EmptyContract(t *testing.T) {
	_, err := contract.Eval(nil, nil)
	if !errors.Is(err, chain.ErrContractEval) {
		t.Fatalf("Eval empty contract: got %v, want ErrContractEval", err)
	}
}

func TestClassifyToken(t *testing.T) {
	tests := []struct {
		tok  string
		want chain.RevPolish
	}{
		{"a", chain.Arg()},
		{"+", chain.Operation('+')},
		{"-", chain.Operation('-')},
		{"*", chain.Operation('*')},
		{"/", chain.Operation('/')},
		{"%", chain.Operation('%')},
		{"p", chain.Operation('p')},
		{"3.5", chain.Number(3.5)},
		// A leading '-' classifies as the subtraction operation, not a
		// negative Number — ClassifyToken checks the first byte before
		// attempting a float parse.
		{"-12", chain.Operation('-')},
	}
	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			got, err := contract.ClassifyToken(tt.tok)
			if err != nil {
				t.Fatalf("ClassifyToken(%q): %v", tt.tok, err)
			}
			if got != tt.want {
				t.Fatalf("ClassifyToken(%q) = %+v, want %+v", tt.tok, got, tt.want)
			}
		})
	}
}

func TestClassifyToken_Invalid(t *testing.T) {
	if _, err := contract.ClassifyToken("not-a-number"); err == nil {
		t.Fatal("ClassifyToken on garbage token = nil error, want failure")
	}
}
