package ports

import (
	"context"
	"math/big"
)

// RandomWordsRequest carries the parameters forwarded as-is to the
// randomness provider when a draw is requested.
type RandomWordsRequest struct {
	KeyHash              string
	SubscriptionId       uint64
	RequestConfirmations uint32
	CallbackGasLimit     uint32
	NumWords             uint32
}

type RandomWordsFulfillment struct {
	RequestId   string
	RandomWords []*big.Int
	Proof       string
}

type FulfillmentHandler func(ctx context.Context, fulfillment RandomWordsFulfillment) error

// RandomnessProvider requests random words from an external source.
// Fulfillments are delivered asynchronously to the registered handler and
// only the provider is allowed to produce them.
type RandomnessProvider interface {
	RequestRandomWords(ctx context.Context, req RandomWordsRequest) (requestId string, err error)
	RegisterFulfillmentHandler(handler FulfillmentHandler)
	// VerifyFulfillment checks that the proof of a fulfillment was produced
	// by the provider for the given request parameters.
	VerifyFulfillment(req RandomWordsRequest, fulfillment RandomWordsFulfillment) error
	// ResumeRequest schedules again the delivery of a request issued before
	// a restart. The provider must be started.
	ResumeRequest(ctx context.Context, requestId string, req RandomWordsRequest) error
	Start() error
	Stop()
}
