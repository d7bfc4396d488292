package main

import (
	"flag"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"perpsafety/config"
	"perpsafety/native/auction"
	"perpsafety/native/reserve"
	"perpsafety/native/rewards"
	"perpsafety/native/safetymodule"
	"perpsafety/observability/logging"
	"perpsafety/services/indexer"
)

func main() {
	configFile := flag.String("config", "./safety.toml", "Path to the configuration file")
	metricsAddr := flag.String("metrics", ":9464", "Listen address for the metrics endpoint")
	dbPath := flag.String("db", "./safety-index.db", "Path to the event index database")
	flag.Parse()

	logger := logging.Setup("safetyd", os.Getenv("SAFETY_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	db, err := gorm.Open(sqlite.Open(*dbPath), &gorm.Config{})
	if err != nil {
		logger.Error("open index database", "err", err)
		os.Exit(1)
	}
	idx, err := indexer.New(db)
	if err != nil {
		logger.Error("migrate index schema", "err", err)
		os.Exit(1)
	}

	governor := cfg.GovernorAddress()

	vault, err := reserve.NewVault(governor)
	if err != nil {
		logger.Error("construct reserve", "err", err)
		os.Exit(1)
	}

	module, err := safetymodule.NewModule(governor, cfg.Module(), cfg.Escrow(), cfg.CooldownSeconds, cfg.UnstakeWindow)
	if err != nil {
		logger.Error("construct safety module", "err", err)
		os.Exit(1)
	}
	module.SetEmitter(idx)

	maxMultiplier, smoothing := cfg.MultiplierBounds()
	stakeDist, err := rewards.NewStakeDistributor(governor, rewards.MultiplierParams{
		MaxMultiplier:  maxMultiplier,
		SmoothingValue: smoothing,
	})
	if err != nil {
		logger.Error("construct staking distributor", "err", err)
		os.Exit(1)
	}
	stakeDist.SetState(rewards.NewMemoryState())
	stakeDist.SetMarketSource(module)
	stakeDist.SetReserve(vault)
	stakeDist.SetController(cfg.Module())
	stakeDist.SetPauses(module)
	stakeDist.SetEmitter(idx)

	auctions := auction.NewEngine(governor, cfg.Module(), cfg.Payment(), cfg.Escrow())
	auctions.SetState(auction.NewMemoryState())
	auctions.SetTokenLedger(newDevLedger())
	auctions.SetSettlementHook(module)
	auctions.SetPauses(module)
	auctions.SetEmitter(idx)

	module.SetDistributor(stakeDist)
	module.SetAuctionHouse(auctions)

	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	logger.Info("safetyd listening", "metrics", *metricsAddr, "cooldown", cfg.CooldownSeconds)
	if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
		logger.Error("metrics server", "err", err)
		os.Exit(1)
	}
}

// devLedger is the in-process token ledger used when safetyd runs without a
// chain backend. Balances start at zero and are credited through auction
// escrow flows only.
type devLedger struct {
	mu       sync.Mutex
	balances map[string]*big.Int
}

func newDevLedger() *devLedger {
	return &devLedger{balances: make(map[string]*big.Int)}
}

func (l *devLedger) key(token, account common.Address) string {
	return token.Hex() + "/" + account.Hex()
}

func (l *devLedger) BalanceOf(token, account common.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal, ok := l.balances[l.key(token, account)]; ok {
		return new(big.Int).Set(bal), nil
	}
	return big.NewInt(0), nil
}

func (l *devLedger) Transfer(token, from, to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	fromKey := l.key(token, from)
	fromBal := l.balances[fromKey]
	if fromBal == nil {
		fromBal = big.NewInt(0)
	}
	if fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("ledger: insufficient balance for %s", from.Hex())
	}
	l.balances[fromKey] = new(big.Int).Sub(fromBal, amount)
	toKey := l.key(token, to)
	toBal := l.balances[toKey]
	if toBal == nil {
		toBal = big.NewInt(0)
	}
	l.balances[toKey] = new(big.Int).Add(toBal, amount)
	return nil
}
