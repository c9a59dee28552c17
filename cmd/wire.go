package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bnema/boards-cli/internal/adapters/driver/browser"
	tomlrepo "github.com/bnema/boards-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/boards-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/boards-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/boards-cli/internal/adapters/secrets/pass"
	"github.com/bnema/boards-cli/internal/application"
	"github.com/bnema/boards-cli/internal/ports"
)

type app struct {
	library   *application.LibraryService
	executor  *application.QueryExecutor
	discovery *application.DiscoveryService
	transfer  *application.TransferService
	auth      *application.AuthService
	driver    *browser.Driver
	now       func() time.Time
}

func wireApp() (*app, error) {
	cfg := viper.New()
	cfg.SetEnvPrefix("BD")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	setConfigDefaults(cfg)

	repo, err := tomlrepo.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire board repository: %w", err)
	}

	states, err := tomlrepo.NewStateStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire auth state store: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	secrets, err := secretChain(cfg, filepath.Join(homeDir, ".config", "bd", "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	driverCfg := driverConfig(cfg)
	secretKey := cfg.GetString("auth.secret_key")

	// The allocator is lazy: no Chrome process starts until a command
	// actually opens a session.
	driver := browser.NewDriver(driverCfg, secrets, secretKey)
	flow := browser.NewFlow(driverCfg)

	clock := ports.SystemClock{}
	policy := application.QueryPolicy{
		Timeout:      cfg.GetDuration("query.timeout"),
		PollInterval: cfg.GetDuration("query.poll_interval"),
		StableReads:  cfg.GetInt("query.stable_reads"),
	}

	library := application.NewLibraryService(repo, clock)
	executor := application.NewQueryExecutor(repo, states, driver, clock, nil, policy)

	return &app{
		library:   library,
		executor:  executor,
		discovery: application.NewDiscoveryService(executor, library),
		transfer:  application.NewTransferService(repo, states, clock),
		auth:      application.NewAuthService(flow, secrets, states, clock, secretKey),
		driver:    driver,
		now:       time.Now,
	}, nil
}

func setConfigDefaults(cfg *viper.Viper) {
	cfg.SetDefault("auth.secret_key", application.DefaultSessionSecretKey)
	cfg.SetDefault("auth.secret_backend", "keyring")
	cfg.SetDefault("driver.base_url", "https://youmind.com")
	cfg.SetDefault("driver.headless", true)
	cfg.SetDefault("query.timeout", application.DefaultQueryTimeout)
	cfg.SetDefault("query.poll_interval", application.DefaultPollInterval)
	cfg.SetDefault("query.stable_reads", application.DefaultStableReads)
}

// secretChain picks the primary secret backend; the file store is always
// the fallback so a broken backend never blocks login or logout.
func secretChain(cfg *viper.Viper, fileRoot string) (*chainstore.Store, error) {
	backend := cfg.GetString("auth.secret_backend")
	switch backend {
	case "", "keyring":
		return chainstore.NewKeyringFirstWithFileFallback(fileRoot)
	case "pass":
		return chainstore.NewStoreChecked(passstore.NewStore(), filestore.NewStore(fileRoot))
	default:
		return nil, fmt.Errorf("unknown secret backend %q (expected keyring or pass)", backend)
	}
}

// driverConfig reads only the explicitly set keys; the browser package
// fills the remaining defaults itself.
func driverConfig(cfg *viper.Viper) browser.Config {
	return browser.Config{
		BaseURL:       cfg.GetString("driver.base_url"),
		Headless:      cfg.GetBool("driver.headless"),
		SignInHosts:   cfg.GetStringSlice("driver.sign_in_hosts"),
		SessionCookie: cfg.GetString("driver.session_cookie"),
		Selectors: browser.Selectors{
			Composer: cfg.GetString("driver.selector.composer"),
			Send:     cfg.GetString("driver.selector.send"),
			Answer:   cfg.GetString("driver.selector.answer"),
			Busy:     cfg.GetString("driver.selector.busy"),
			Failure:  cfg.GetString("driver.selector.failure"),
			Missing:  cfg.GetString("driver.selector.missing"),
			Account:  cfg.GetString("driver.selector.account"),
		},
	}
}
