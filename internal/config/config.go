package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ark-network/raffle/internal/core/application"
	"github.com/ark-network/raffle/internal/core/ports"
	"github.com/ark-network/raffle/internal/infrastructure/db"
	watermilldb "github.com/ark-network/raffle/internal/infrastructure/db/watermill"
	inmemorypayout "github.com/ark-network/raffle/internal/infrastructure/payout/inmemory"
	redispayout "github.com/ark-network/raffle/internal/infrastructure/payout/redis"
	localrandomness "github.com/ark-network/raffle/internal/infrastructure/randomness/local"
	scheduler "github.com/ark-network/raffle/internal/infrastructure/scheduler/gocron"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	supportedEventDbs = supportedType{
		"watermill": {},
	}
	supportedDbs = supportedType{
		"badger": {},
		"sqlite": {},
	}
	supportedRandomness = supportedType{
		"local": {},
	}
	supportedPayouts = supportedType{
		"inmemory": {},
		"redis":    {},
	}
)

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	RaffleId    string
	EntranceFee uint64
	Interval    uint64

	DbType      string
	EventDbType string
	DbDir       string

	RandomnessType       string
	ProviderKey          string
	KeyHash              string
	SubscriptionId       uint64
	RequestConfirmations uint32
	CallbackGasLimit     uint32
	FulfillmentDelay     time.Duration

	PayoutType        string
	RedisUrl          string
	RedisNumOfRetries int

	KeeperEnabled  bool
	KeeperInterval int64

	OtelCollectorEndpoint string

	repo       ports.RepoManager
	pubsub     *gochannel.GoChannel
	randomness ports.RandomnessProvider
	payout     ports.PayoutService
	scheduler  ports.SchedulerService
	registry   *prometheus.Registry
	svc        application.Service
	keeper     *application.Keeper
}

var (
	Datadir               = "DATADIR"
	Port                  = "PORT"
	LogLevel              = "LOG_LEVEL"
	RaffleId              = "RAFFLE_ID"
	EntranceFee           = "ENTRANCE_FEE"
	Interval              = "INTERVAL"
	DbType                = "DB_TYPE"
	EventDbType           = "EVENT_DB_TYPE"
	RandomnessType        = "RANDOMNESS_TYPE"
	ProviderKey           = "PROVIDER_KEY"
	KeyHash               = "KEY_HASH"
	SubscriptionId        = "SUBSCRIPTION_ID"
	RequestConfirmations  = "REQUEST_CONFIRMATIONS"
	CallbackGasLimit      = "CALLBACK_GAS_LIMIT"
	FulfillmentDelay      = "FULFILLMENT_DELAY"
	PayoutType            = "PAYOUT_TYPE"
	RedisUrl              = "REDIS_URL"
	RedisNumOfRetries     = "REDIS_NUM_OF_RETRIES"
	KeeperEnabled         = "KEEPER_ENABLED"
	KeeperInterval        = "KEEPER_INTERVAL"
	OtelCollectorEndpoint = "OTEL_COLLECTOR_ENDPOINT"

	defaultDatadir              = btcutil.AppDataDir("raffled", false)
	DefaultPort                 = 7070
	defaultLogLevel             = 4
	defaultRaffleId             = "default"
	defaultEntranceFee          = 10000000
	defaultInterval             = 30
	defaultDbType               = "badger"
	defaultEventDbType          = "watermill"
	defaultRandomnessType       = "local"
	defaultKeyHash              = strings.Repeat("00", 32)
	defaultSubscriptionId       = 0
	defaultRequestConfirmations = 3
	defaultCallbackGasLimit     = 500000
	defaultFulfillmentDelay     = time.Second
	defaultPayoutType           = "inmemory"
	defaultRedisNumOfRetries    = 10
	defaultKeeperEnabled        = true
	defaultKeeperInterval       = 5
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("RAFFLE")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Port, DefaultPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(RaffleId, defaultRaffleId)
	viper.SetDefault(EntranceFee, defaultEntranceFee)
	viper.SetDefault(Interval, defaultInterval)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(EventDbType, defaultEventDbType)
	viper.SetDefault(RandomnessType, defaultRandomnessType)
	viper.SetDefault(KeyHash, defaultKeyHash)
	viper.SetDefault(SubscriptionId, defaultSubscriptionId)
	viper.SetDefault(RequestConfirmations, defaultRequestConfirmations)
	viper.SetDefault(CallbackGasLimit, defaultCallbackGasLimit)
	viper.SetDefault(FulfillmentDelay, defaultFulfillmentDelay)
	viper.SetDefault(PayoutType, defaultPayoutType)
	viper.SetDefault(RedisNumOfRetries, defaultRedisNumOfRetries)
	viper.SetDefault(KeeperEnabled, defaultKeeperEnabled)
	viper.SetDefault(KeeperInterval, defaultKeeperInterval)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	dbPath := filepath.Join(viper.GetString(Datadir), "db")

	return &Config{
		Datadir:               viper.GetString(Datadir),
		Port:                  viper.GetUint32(Port),
		LogLevel:              viper.GetInt(LogLevel),
		RaffleId:              viper.GetString(RaffleId),
		EntranceFee:           viper.GetUint64(EntranceFee),
		Interval:              viper.GetUint64(Interval),
		DbType:                viper.GetString(DbType),
		EventDbType:           viper.GetString(EventDbType),
		DbDir:                 dbPath,
		RandomnessType:        viper.GetString(RandomnessType),
		ProviderKey:           viper.GetString(ProviderKey),
		KeyHash:               viper.GetString(KeyHash),
		SubscriptionId:        viper.GetUint64(SubscriptionId),
		RequestConfirmations:  viper.GetUint32(RequestConfirmations),
		CallbackGasLimit:      viper.GetUint32(CallbackGasLimit),
		FulfillmentDelay:      viper.GetDuration(FulfillmentDelay),
		PayoutType:            viper.GetString(PayoutType),
		RedisUrl:              viper.GetString(RedisUrl),
		RedisNumOfRetries:     viper.GetInt(RedisNumOfRetries),
		KeeperEnabled:         viper.GetBool(KeeperEnabled),
		KeeperInterval:        viper.GetInt64(KeeperInterval),
		OtelCollectorEndpoint: viper.GetString(OtelCollectorEndpoint),
	}, nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func (c *Config) Validate() error {
	if !supportedEventDbs.supports(c.EventDbType) {
		return fmt.Errorf("event db type not supported, please select one of: %s", supportedEventDbs)
	}
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedRandomness.supports(c.RandomnessType) {
		return fmt.Errorf("randomness type not supported, please select one of: %s", supportedRandomness)
	}
	if !supportedPayouts.supports(c.PayoutType) {
		return fmt.Errorf("payout type not supported, please select one of: %s", supportedPayouts)
	}
	if c.EntranceFee == 0 {
		return fmt.Errorf("invalid entrance fee, must be greater than 0")
	}
	if c.Interval == 0 {
		return fmt.Errorf("invalid interval, must be greater than 0")
	}
	if c.KeeperEnabled && c.KeeperInterval <= 0 {
		return fmt.Errorf("invalid keeper interval, must be greater than 0")
	}
	if c.PayoutType == "redis" && len(c.RedisUrl) <= 0 {
		return fmt.Errorf("missing redis url for redis payout")
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.randomnessService(); err != nil {
		return err
	}
	if err := c.payoutService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	c.metricsRegistry()
	return nil
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

// KeeperService returns nil if the keeper is disabled.
func (c *Config) KeeperService() (*application.Keeper, error) {
	if !c.KeeperEnabled {
		return nil, nil
	}
	if c.keeper == nil {
		if err := c.keeperService(); err != nil {
			return nil, err
		}
	}
	return c.keeper, nil
}

func (c *Config) MetricsRegistry() *prometheus.Registry {
	return c.registry
}

// EventSubscriber gives read access to the raffle events published by the
// event repository.
func (c *Config) EventSubscriber() message.Subscriber {
	return c.pubsub
}

func (c *Config) repoManager() error {
	var eventStoreConfig []interface{}
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.EventDbType {
	case "watermill":
		c.pubsub = watermilldb.NewPubSub()
		eventStoreConfig = []interface{}{c.pubsub}
	default:
		return fmt.Errorf("unknown event db type")
	}

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		dataStoreConfig = []interface{}{c.DbDir}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		EventStoreType:   c.EventDbType,
		DataStoreType:    c.DbType,
		EventStoreConfig: eventStoreConfig,
		DataStoreConfig:  dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) randomnessService() error {
	var svc ports.RandomnessProvider
	var err error
	switch c.RandomnessType {
	case "local":
		var provider *localrandomness.Provider
		provider, err = localrandomness.NewProvider(c.ProviderKey, c.FulfillmentDelay)
		if err == nil {
			log.Infof("local randomness provider pubkey: %s", provider.PublicKey())
			svc = provider
		}
	default:
		err = fmt.Errorf("unknown randomness type")
	}
	if err != nil {
		return err
	}

	c.randomness = svc
	return nil
}

func (c *Config) payoutService() error {
	var svc ports.PayoutService
	var err error
	switch c.PayoutType {
	case "inmemory":
		svc = inmemorypayout.NewLedger()
	case "redis":
		svc, err = redispayout.NewLedger(c.RedisUrl, c.RedisNumOfRetries)
	default:
		err = fmt.Errorf("unknown payout type")
	}
	if err != nil {
		return err
	}

	c.payout = svc
	return nil
}

func (c *Config) schedulerService() error {
	c.scheduler = scheduler.NewScheduler()
	return nil
}

func (c *Config) metricsRegistry() {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.registry = registry
}

func (c *Config) appService() error {
	svc, err := application.NewService(
		application.Config{
			RaffleId:    c.RaffleId,
			EntranceFee: c.EntranceFee,
			Interval:    c.Interval,
			Request: application.RequestConfig{
				KeyHash:              c.KeyHash,
				SubscriptionId:       c.SubscriptionId,
				RequestConfirmations: c.RequestConfirmations,
				CallbackGasLimit:     c.CallbackGasLimit,
				NumWords:             1,
			},
		},
		c.repo, c.randomness, c.payout, application.NewMetrics(c.registry),
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func (c *Config) keeperService() error {
	svc, err := c.AppService()
	if err != nil {
		return err
	}

	keeper, err := application.NewKeeper(
		svc, c.scheduler, time.Duration(c.KeeperInterval)*time.Second,
	)
	if err != nil {
		return err
	}

	c.keeper = keeper
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	sort.Strings(types)
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
