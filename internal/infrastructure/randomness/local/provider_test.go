package localrandomness_test

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ark-network/raffle/internal/core/ports"
	localrandomness "github.com/ark-network/raffle/internal/infrastructure/randomness/local"
	"github.com/stretchr/testify/require"
)

const (
	providerKey = "8e1a6d4b5c5ba6f5d0b3c8f7a0a2d9e4c1b7f3e6d5a4c3b2a1f0e9d8c7b6a5f4"
	keyHash     = "0000000000000000000000000000000000000000000000000000000000000000"
)

var request = ports.RandomWordsRequest{
	KeyHash:              keyHash,
	SubscriptionId:       1,
	RequestConfirmations: 3,
	CallbackGasLimit:     500000,
	NumWords:             2,
}

func TestProvider(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		provider, err := localrandomness.NewProvider(providerKey, 10*time.Millisecond)
		require.NoError(t, err)

		fulfillments := make(chan ports.RandomWordsFulfillment, 1)
		provider.RegisterFulfillmentHandler(
			func(_ context.Context, f ports.RandomWordsFulfillment) error {
				fulfillments <- f
				return nil
			},
		)
		require.NoError(t, provider.Start())
		defer provider.Stop()

		requestId, err := provider.RequestRandomWords(context.Background(), request)
		require.NoError(t, err)
		require.NotEmpty(t, requestId)

		var fulfillment ports.RandomWordsFulfillment
		select {
		case fulfillment = <-fulfillments:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for fulfillment")
		}

		require.Equal(t, requestId, fulfillment.RequestId)
		require.Len(t, fulfillment.RandomWords, int(request.NumWords))
		for _, word := range fulfillment.RandomWords {
			require.Equal(t, 1, word.Sign())
		}
		require.NotEqual(t, 0, fulfillment.RandomWords[0].Cmp(fulfillment.RandomWords[1]))

		err = localrandomness.Verify(provider.PublicKey(), request, fulfillment)
		require.NoError(t, err)
	})

	t.Run("handler error does not stop delivery", func(t *testing.T) {
		provider, err := localrandomness.NewProvider("", 0)
		require.NoError(t, err)

		calls := make(chan string, 2)
		provider.RegisterFulfillmentHandler(
			func(_ context.Context, f ports.RandomWordsFulfillment) error {
				calls <- f.RequestId
				return fmt.Errorf("rejected")
			},
		)
		require.NoError(t, provider.Start())
		defer provider.Stop()

		req := request
		req.NumWords = 1
		for i := 0; i < 2; i++ {
			_, err := provider.RequestRandomWords(context.Background(), req)
			require.NoError(t, err)
		}

		for i := 0; i < 2; i++ {
			select {
			case <-calls:
			case <-time.After(5 * time.Second):
				t.Fatal("timed out waiting for fulfillment")
			}
		}
	})

	t.Run("resume after restart", func(t *testing.T) {
		stopped, err := localrandomness.NewProvider(providerKey, time.Hour)
		require.NoError(t, err)
		require.NoError(t, stopped.Start())
		requestId, err := stopped.RequestRandomWords(context.Background(), request)
		require.NoError(t, err)
		stopped.Stop()

		provider, err := localrandomness.NewProvider(providerKey, 0)
		require.NoError(t, err)

		err = provider.ResumeRequest(context.Background(), requestId, request)
		require.EqualError(t, err, "provider not started")

		fulfillments := make(chan ports.RandomWordsFulfillment, 1)
		provider.RegisterFulfillmentHandler(
			func(_ context.Context, f ports.RandomWordsFulfillment) error {
				fulfillments <- f
				return nil
			},
		)
		require.NoError(t, provider.Start())
		defer provider.Stop()

		err = provider.ResumeRequest(context.Background(), "", request)
		require.EqualError(t, err, "missing request id")

		err = provider.ResumeRequest(context.Background(), requestId, request)
		require.NoError(t, err)

		var fulfillment ports.RandomWordsFulfillment
		select {
		case fulfillment = <-fulfillments:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for fulfillment")
		}

		require.Equal(t, requestId, fulfillment.RequestId)
		require.Len(t, fulfillment.RandomWords, int(request.NumWords))
		require.NoError(t, stopped.VerifyFulfillment(request, fulfillment))
		require.NoError(t, provider.VerifyFulfillment(request, fulfillment))
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := localrandomness.NewProvider("zz", time.Second)
		require.EqualError(t, err, "invalid provider key, must be 32 bytes in hex format")

		_, err = localrandomness.NewProvider(providerKey, -time.Second)
		require.EqualError(t, err, "invalid fulfillment delay, must not be negative")

		provider, err := localrandomness.NewProvider(providerKey, time.Second)
		require.NoError(t, err)

		_, err = provider.RequestRandomWords(context.Background(), request)
		require.EqualError(t, err, "provider not started")

		require.NoError(t, provider.Start())
		defer provider.Stop()

		fixtures := []struct {
			update      func(req *ports.RandomWordsRequest)
			expectedErr string
		}{
			{
				update:      func(req *ports.RandomWordsRequest) { req.KeyHash = "00" },
				expectedErr: "invalid key hash, must be 32 bytes in hex format",
			},
			{
				update:      func(req *ports.RandomWordsRequest) { req.NumWords = 0 },
				expectedErr: "invalid number of words, must be between 1 and 500",
			},
			{
				update:      func(req *ports.RandomWordsRequest) { req.RequestConfirmations = 201 },
				expectedErr: "invalid request confirmations, must be at most 200",
			},
			{
				update:      func(req *ports.RandomWordsRequest) { req.CallbackGasLimit = 0 },
				expectedErr: "invalid callback gas limit, must be greater than 0",
			},
		}

		for _, f := range fixtures {
			req := request
			f.update(&req)
			_, err := provider.RequestRandomWords(context.Background(), req)
			require.EqualError(t, err, f.expectedErr)
		}
	})
}

func TestVerify(t *testing.T) {
	provider, err := localrandomness.NewProvider(providerKey, 0)
	require.NoError(t, err)

	fulfillments := make(chan ports.RandomWordsFulfillment, 1)
	provider.RegisterFulfillmentHandler(
		func(_ context.Context, f ports.RandomWordsFulfillment) error {
			fulfillments <- f
			return nil
		},
	)
	require.NoError(t, provider.Start())
	defer provider.Stop()

	_, err = provider.RequestRandomWords(context.Background(), request)
	require.NoError(t, err)

	var fulfillment ports.RandomWordsFulfillment
	select {
	case fulfillment = <-fulfillments:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for fulfillment")
	}

	other, err := localrandomness.NewProvider("", 0)
	require.NoError(t, err)

	tamperedWords := fulfillment
	tamperedWords.RandomWords = []*big.Int{
		new(big.Int).Add(fulfillment.RandomWords[0], big.NewInt(1)),
		fulfillment.RandomWords[1],
	}

	otherRequest := fulfillment
	otherRequest.RequestId = "another"

	otherSubscription := request
	otherSubscription.SubscriptionId = 2

	fixtures := []struct {
		name        string
		pubkey      string
		request     ports.RandomWordsRequest
		fulfillment ports.RandomWordsFulfillment
		expectedErr string
	}{
		{"wrong key", other.PublicKey(), request, fulfillment, "invalid signature for word 0"},
		{"tampered word", provider.PublicKey(), request, tamperedWords, "word 0 does not match proof"},
		{"wrong request", provider.PublicKey(), request, otherRequest, "invalid signature for word 0"},
		{"wrong subscription", provider.PublicKey(), otherSubscription, fulfillment, "invalid signature for word 0"},
	}

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			err := localrandomness.Verify(f.pubkey, f.request, f.fulfillment)
			require.EqualError(t, err, f.expectedErr)
		})
	}

	t.Run("missing proof", func(t *testing.T) {
		unproven := fulfillment
		unproven.Proof = ""
		err := provider.VerifyFulfillment(request, unproven)
		require.EqualError(t, err, "proof does not match number of words")
	})
}
