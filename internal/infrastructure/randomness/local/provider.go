package localrandomness

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ark-network/raffle/internal/core/ports"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	fulfillmentTopic = "randomness.fulfillment"

	maxNumWords             = 500
	maxRequestConfirmations = 200
	keyHashSize             = 32
)

type fulfillmentMsg struct {
	RequestId   string   `json:"request_id"`
	RandomWords []string `json:"random_words"`
	Proof       string   `json:"proof"`
}

// Provider answers randomness requests with words derived from schnorr
// signatures of the provider key over a per request seed. Anyone holding the
// public key can check a fulfillment with Verify.
type Provider struct {
	key   *btcec.PrivateKey
	delay time.Duration

	pubsub *gochannel.GoChannel

	lock    *sync.RWMutex
	handler ports.FulfillmentHandler
	timers  map[string]*time.Timer
	cancel  context.CancelFunc
	wg      *sync.WaitGroup
}

// NewProvider builds a provider from a hex encoded secp256k1 private key, a
// new key is generated if empty.
func NewProvider(privateKey string, delay time.Duration) (*Provider, error) {
	var key *btcec.PrivateKey
	if len(privateKey) <= 0 {
		k, err := btcec.NewPrivateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate provider key: %w", err)
		}
		key = k
	} else {
		buf, err := hex.DecodeString(privateKey)
		if err != nil || len(buf) != 32 {
			return nil, fmt.Errorf("invalid provider key, must be 32 bytes in hex format")
		}
		key, _ = btcec.PrivKeyFromBytes(buf)
	}
	if delay < 0 {
		return nil, fmt.Errorf("invalid fulfillment delay, must not be negative")
	}

	return &Provider{
		key:    key,
		delay:  delay,
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
		lock:   &sync.RWMutex{},
		timers: make(map[string]*time.Timer),
		wg:     &sync.WaitGroup{},
	}, nil
}

// PublicKey returns the x-only public key used to verify fulfillments.
func (p *Provider) PublicKey() string {
	return hex.EncodeToString(schnorr.SerializePubKey(p.key.PubKey()))
}

func (p *Provider) RegisterFulfillmentHandler(handler ports.FulfillmentHandler) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.handler = handler
}

func (p *Provider) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	messages, err := p.pubsub.Subscribe(ctx, fulfillmentTopic)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to fulfillments: %w", err)
	}

	p.lock.Lock()
	p.cancel = cancel
	p.lock.Unlock()

	p.wg.Add(1)
	go p.listen(ctx, messages)

	log.Debugf("local randomness provider started with pubkey %s", p.PublicKey())
	return nil
}

func (p *Provider) Stop() {
	p.lock.Lock()
	for id, timer := range p.timers {
		timer.Stop()
		delete(p.timers, id)
	}
	cancel := p.cancel
	p.cancel = nil
	p.lock.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
	//nolint:errcheck
	p.pubsub.Close()
}

func (p *Provider) RequestRandomWords(
	_ context.Context, req ports.RandomWordsRequest,
) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}

	requestId := uuid.New().String()
	if err := p.schedule(requestId, req); err != nil {
		return "", err
	}

	log.Debugf("accepted randomness request %s", requestId)
	return requestId, nil
}

// ResumeRequest derives again the words of a request accepted before a
// restart and schedules their delivery. Signing is deterministic, so the
// words are the same the request would have received originally.
func (p *Provider) ResumeRequest(
	_ context.Context, requestId string, req ports.RandomWordsRequest,
) error {
	if len(requestId) <= 0 {
		return fmt.Errorf("missing request id")
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	p.lock.RLock()
	_, scheduled := p.timers[requestId]
	p.lock.RUnlock()
	if scheduled {
		return nil
	}

	if err := p.schedule(requestId, req); err != nil {
		return err
	}

	log.Debugf("resumed randomness request %s", requestId)
	return nil
}

// VerifyFulfillment checks the fulfillment against the provider's own key.
func (p *Provider) VerifyFulfillment(
	req ports.RandomWordsRequest, fulfillment ports.RandomWordsFulfillment,
) error {
	return Verify(p.PublicKey(), req, fulfillment)
}

func (p *Provider) schedule(requestId string, req ports.RandomWordsRequest) error {
	words, proof, err := p.generate(requestId, req)
	if err != nil {
		return err
	}

	randomWords := make([]string, 0, len(words))
	for _, word := range words {
		randomWords = append(randomWords, word.String())
	}
	payload, err := json.Marshal(fulfillmentMsg{requestId, randomWords, proof})
	if err != nil {
		return err
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	if p.cancel == nil {
		return fmt.Errorf("provider not started")
	}

	// Delivery is always asynchronous, even with zero delay.
	p.timers[requestId] = time.AfterFunc(p.delay, func() {
		p.lock.Lock()
		delete(p.timers, requestId)
		p.lock.Unlock()

		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := p.pubsub.Publish(fulfillmentTopic, msg); err != nil {
			log.WithError(err).Warnf("failed to publish fulfillment for %s", requestId)
		}
	})
	return nil
}

func (p *Provider) listen(ctx context.Context, messages <-chan *message.Message) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			p.deliver(ctx, msg)
			msg.Ack()
		}
	}
}

func (p *Provider) deliver(ctx context.Context, msg *message.Message) {
	var payload fulfillmentMsg
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.WithError(err).Warn("dropping malformed fulfillment")
		return
	}

	fulfillment, err := payload.toFulfillment()
	if err != nil {
		log.WithError(err).Warnf("dropping fulfillment for %s", payload.RequestId)
		return
	}

	p.lock.RLock()
	handler := p.handler
	p.lock.RUnlock()

	if handler == nil {
		log.Warnf("no handler registered, dropping fulfillment for %s", payload.RequestId)
		return
	}

	if err := handler(ctx, *fulfillment); err != nil {
		log.WithError(err).Warnf("fulfillment for %s rejected", payload.RequestId)
		return
	}
	log.Debugf("fulfilled randomness request %s", payload.RequestId)
}

func (p *Provider) generate(
	requestId string, req ports.RandomWordsRequest,
) ([]*big.Int, string, error) {
	words := make([]*big.Int, 0, req.NumWords)
	proof := make([]byte, 0, int(req.NumWords)*schnorr.SignatureSize)

	for i := uint32(0); i < req.NumWords; i++ {
		seed, err := seedFor(requestId, req, i)
		if err != nil {
			return nil, "", err
		}
		sig, err := schnorr.Sign(p.key, seed)
		if err != nil {
			return nil, "", fmt.Errorf("failed to sign seed: %w", err)
		}
		rawSig := sig.Serialize()
		words = append(words, wordFromProof(rawSig))
		proof = append(proof, rawSig...)
	}

	return words, hex.EncodeToString(proof), nil
}

// Verify checks that the fulfillment was produced by the owner of pubkey for
// the given request.
func Verify(
	pubkey string, req ports.RandomWordsRequest, fulfillment ports.RandomWordsFulfillment,
) error {
	buf, err := hex.DecodeString(pubkey)
	if err != nil {
		return fmt.Errorf("invalid pubkey format: %w", err)
	}
	key, err := schnorr.ParsePubKey(buf)
	if err != nil {
		return fmt.Errorf("invalid pubkey: %w", err)
	}

	proof, err := hex.DecodeString(fulfillment.Proof)
	if err != nil {
		return fmt.Errorf("invalid proof format: %w", err)
	}
	if len(fulfillment.RandomWords) != int(req.NumWords) ||
		len(proof) != int(req.NumWords)*schnorr.SignatureSize {
		return fmt.Errorf("proof does not match number of words")
	}

	for i, word := range fulfillment.RandomWords {
		rawSig := proof[i*schnorr.SignatureSize : (i+1)*schnorr.SignatureSize]
		sig, err := schnorr.ParseSignature(rawSig)
		if err != nil {
			return fmt.Errorf("invalid signature for word %d: %w", i, err)
		}
		seed, err := seedFor(fulfillment.RequestId, req, uint32(i))
		if err != nil {
			return err
		}
		if !sig.Verify(seed, key) {
			return fmt.Errorf("invalid signature for word %d", i)
		}
		if word == nil || wordFromProof(rawSig).Cmp(word) != 0 {
			return fmt.Errorf("word %d does not match proof", i)
		}
	}
	return nil
}

func validateRequest(req ports.RandomWordsRequest) error {
	keyHash, err := hex.DecodeString(req.KeyHash)
	if err != nil || len(keyHash) != keyHashSize {
		return fmt.Errorf("invalid key hash, must be 32 bytes in hex format")
	}
	if req.NumWords == 0 || req.NumWords > maxNumWords {
		return fmt.Errorf("invalid number of words, must be between 1 and %d", maxNumWords)
	}
	if req.RequestConfirmations > maxRequestConfirmations {
		return fmt.Errorf(
			"invalid request confirmations, must be at most %d", maxRequestConfirmations,
		)
	}
	if req.CallbackGasLimit == 0 {
		return fmt.Errorf("invalid callback gas limit, must be greater than 0")
	}
	return nil
}

// seedFor returns sha256(request id || key hash || subscription id || index).
func seedFor(requestId string, req ports.RandomWordsRequest, index uint32) ([]byte, error) {
	keyHash, err := hex.DecodeString(req.KeyHash)
	if err != nil {
		return nil, fmt.Errorf("invalid key hash: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(requestId))
	h.Write(keyHash)
	_ = binary.Write(h, binary.BigEndian, req.SubscriptionId)
	_ = binary.Write(h, binary.BigEndian, index)
	return h.Sum(nil), nil
}

func wordFromProof(proof []byte) *big.Int {
	hash := sha256.Sum256(proof)
	return new(big.Int).SetBytes(hash[:])
}

func (m fulfillmentMsg) toFulfillment() (*ports.RandomWordsFulfillment, error) {
	words := make([]*big.Int, 0, len(m.RandomWords))
	for _, w := range m.RandomWords {
		word, ok := new(big.Int).SetString(w, 10)
		if !ok {
			return nil, fmt.Errorf("invalid random word %q", w)
		}
		words = append(words, word)
	}
	return &ports.RandomWordsFulfillment{
		RequestId:   m.RequestId,
		RandomWords: words,
		Proof:       m.Proof,
	}, nil
}
