package swap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
)

// Errors surfaced by swap execution. Both abort the enclosing payment; the
// caller may retry later with fresh market data.
var (
	ErrSlippageExceeded = errors.New("swap output below minimum")
	ErrSwapFailed       = errors.New("swap execution failed")
)

// Quote is an exact-output quote: AmountIn of SourceToken is expected to
// yield ExpectedOut of DestToken via Route.
type Quote struct {
	SourceToken string `json:"source_token"`
	DestToken   string `json:"dest_token"`
	AmountIn    int64  `json:"amount_in"`
	ExpectedOut int64  `json:"expected_out"`
	Route       string `json:"route"`
}

// Aggregator is the external quote-and-execute facility.
type Aggregator interface {
	QuoteOut(ctx context.Context, sourceToken, destToken string, amountOut int64) (Quote, error)
	Swap(ctx context.Context, quote Quote, minAmountOut int64) (int64, error)
}

// Adapter fronts the aggregator. A same-token conversion short-circuits to
// an identity pass-through with no external calls, so single-token payments
// carry no aggregator dependency at runtime.
type Adapter struct {
	agg Aggregator
}

func NewAdapter(agg Aggregator) *Adapter {
	return &Adapter{agg: agg}
}

func (a *Adapter) QuoteOut(ctx context.Context, sourceToken, destToken string, amountOut int64) (Quote, error) {
	if amountOut <= 0 {
		return Quote{}, fmt.Errorf("quote %s->%s: non-positive amount %d", sourceToken, destToken, amountOut)
	}
	if sourceToken == destToken {
		return Quote{SourceToken: sourceToken, DestToken: destToken, AmountIn: amountOut, ExpectedOut: amountOut}, nil
	}
	quote, err := a.agg.QuoteOut(ctx, sourceToken, destToken, amountOut)
	if err != nil {
		return Quote{}, fmt.Errorf("aggregator quote %s->%s: %w", sourceToken, destToken, err)
	}
	if quote.AmountIn <= 0 || quote.ExpectedOut <= 0 {
		return Quote{}, fmt.Errorf("aggregator quote %s->%s: degenerate quote in=%d out=%d", sourceToken, destToken, quote.AmountIn, quote.ExpectedOut)
	}
	return quote, nil
}

// Execute performs the swap and enforces the caller's minimum output. The
// actual output is what downstream settlement must be computed from; the
// quote's expectation is advisory only.
func (a *Adapter) Execute(ctx context.Context, quote Quote, minAmountOut int64) (int64, error) {
	if quote.SourceToken == quote.DestToken {
		return quote.AmountIn, nil
	}
	out, err := a.agg.Swap(ctx, quote, minAmountOut)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSwapFailed, err)
	}
	if out < minAmountOut {
		return 0, fmt.Errorf("%w: got %d, want at least %d", ErrSlippageExceeded, out, minAmountOut)
	}
	return out, nil
}

// MinOut applies a slippage bound in basis points below the required amount.
func MinOut(amount, slippageBps int64) int64 {
	cut := new(big.Int).Mul(big.NewInt(amount), big.NewInt(slippageBps))
	cut.Quo(cut, big.NewInt(10_000))
	return amount - cut.Int64()
}
