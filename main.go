package main

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/mattn/go-isatty"

	"github.com/dianwoshishi/rtsp-bruter/config"
	"github.com/dianwoshishi/rtsp-bruter/logger"
	"github.com/dianwoshishi/rtsp-bruter/parser"
	"github.com/dianwoshishi/rtsp-bruter/pattern"
	"github.com/dianwoshishi/rtsp-bruter/scanner"
	"github.com/dianwoshishi/rtsp-bruter/utils"
	"github.com/dianwoshishi/rtsp-bruter/wordlists"
)

// AUTHOR of the program
const AUTHOR = "dianwoshishi"

// VERSION should be linked to actual tag
const VERSION = "v0.2.0"

// BANNER format string. It is used in PrintBanner function with VERSION
const BANNER = "       __               __               __           \n  _____/ /________       / /_  _______  __/ /____  _____\n / ___/ __/ ___/ __ \\______/ __ \\/ ___/ / / / __/ _ \\/ ___/\n/ /  / /_(__  ) /_/ /_____/ /_/ / /  / /_/ / /_/  __/ /    \n/_/   \\__/____/ .___/     /_.___/_/   \\__,_/\\__/\\___/_/    %s\n             /_/                                          \nMade by %s\n\n"

// default RTSP port used when a target carries no port segment
const defaultRTSPPort = 554

// program flags and arguments
var (
	app = kingpin.New("rtsp-bruter", "rtsp-bruter is an RTSP credential bruteforce tool.")

	// targets
	targetFlag = app.Flag("target", "Target pattern, host, or file with one per line. Patterns support octet ranges like 192.168.{1-3}.{1-254}, a /bits mask and a :port segment").Short('t').Strings()
	nmapFlag   = app.Flag("nmap", "Import RTSP targets from an nmap output file (-oG or -oX)").Default("").String()

	// wordlist flags
	usernameFlag = app.Flag("username", "Username or file with usernames").Short('u').String()
	passwordFlag = app.Flag("password", "Password or file with passwords").Short('p').String()
	defaultsFlag = app.Flag("defaults", "Use the built-in camera default credential lists").Default("false").Bool()

	// optimization flags
	concurrencyFlag   = app.Flag("concurrency", "Number of parallel probe workers").Short('c').Default("0").Int()
	timeoutFlag       = app.Flag("timeout", "Connection timeout").Default("0s").Duration()
	rateFlag          = app.Flag("rate", "Maximum attempts per second across all workers, 0 for unlimited").Default("0").Int()
	stopOnSuccessFlag = app.Flag("stop-on-success", "Stop bruteforcing a host when its first valid credential is found").Short('f').Default("false").Bool()

	// connection flags
	proxyFlag     = app.Flag("proxy", "SOCKS-proxy address to use for connection in format IP:PORT").Default("").String()
	proxyAuthFlag = app.Flag("proxy-auth", "Proxy username and password in format username:password").Default("").String()

	// configuration file
	configFlag = app.Flag("config", "Path to a YAML configuration file").Default("").String()

	// output options
	quietFlag   = app.Flag("quiet", "Enable quiet mode, print results only").Short('q').Default("false").Bool()
	debugFlag   = app.Flag("debug", "Enable debug mode, print all logs").Short('D').Default("false").Bool()
	verboseFlag = app.Flag("verbose", "Enable verbose mode, log every attempt with timestamp").Short('v').Default("false").Bool()
	jsonFlag    = app.Flag("json", "Output results as JSONL (one JSON object per line)").Short('j').Default("false").Bool()
	outputFlag  = app.Flag("output", "Filename to write output to").Short('o').Default("").String()
)

// PrintBanner is a function to print program banner
func PrintBanner() {
	fmt.Printf(BANNER, VERSION, AUTHOR)
}

// mergeFlags applies explicitly set command line values on top of the
// loaded configuration. Flags always win over file and environment.
func mergeFlags(cfg *config.Config) {
	if len(*targetFlag) > 0 {
		cfg.Targets = *targetFlag
	}
	if *usernameFlag != "" {
		cfg.Usernames = *usernameFlag
	}
	if *passwordFlag != "" {
		cfg.Passwords = *passwordFlag
	}
	if *defaultsFlag {
		cfg.Defaults = true
	}
	if *concurrencyFlag > 0 {
		cfg.Concurrency = *concurrencyFlag
	}
	if *timeoutFlag > 0 {
		cfg.Timeout = *timeoutFlag
	}
	if *rateFlag > 0 {
		cfg.Rate = *rateFlag
	}
	if *stopOnSuccessFlag {
		cfg.StopOnSuccess = true
	}
	if *proxyFlag != "" {
		cfg.Proxy = *proxyFlag
	}
	if *proxyAuthFlag != "" {
		cfg.ProxyAuth = *proxyAuthFlag
	}
	if *quietFlag {
		cfg.Quiet = true
	}
	if *debugFlag {
		cfg.Debug = true
	}
	if *verboseFlag {
		cfg.Verbose = true
	}
	if *jsonFlag {
		cfg.JSON = true
	}
	if *outputFlag != "" {
		cfg.Output = *outputFlag
	}
}

// loadWordlists resolves the credential lists from flags, files or the
// embedded defaults.
func loadWordlists(cfg *config.Config) (usernames, passwords []string, err error) {
	if cfg.Defaults {
		return wordlists.DefaultUsernames, wordlists.DefaultPasswords, nil
	}
	if cfg.Usernames == "" || cfg.Passwords == "" {
		return nil, nil, fmt.Errorf("usernames and passwords are required, use -u/-p or --defaults")
	}
	usernames = utils.LoadLines(cfg.Usernames)
	passwords = utils.LoadLines(cfg.Passwords)
	if len(usernames) == 0 || len(passwords) == 0 {
		return nil, nil, fmt.Errorf("empty username or password list")
	}
	return usernames, passwords, nil
}

// estimateAttempts predicts the total attempt count for the ETA
// display. Returns 0 when any source is a file or hostname, the size
// is then unknown up front.
func estimateAttempts(sources []string, creds int64) int64 {
	var total int64
	for _, source := range sources {
		if utils.IsFileExists(source) {
			return 0
		}
		p, err := pattern.Compile(source)
		if err != nil {
			return 0
		}
		total += int64(p.Count())
	}
	return total * creds
}

func main() {
	// kingpin settings
	app.Version(VERSION)
	app.Author(AUTHOR)
	app.HelpFlag.Short('h')
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	mergeFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// instantiate logger
	if err := logger.Init(cfg.Quiet, cfg.Debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cfg.Verbose {
		logger.SetVerbose(true)
	}

	// print program banner
	if !cfg.Quiet {
		PrintBanner()
	}

	// targets come from flags/config, an nmap import, or a pipe
	sources := cfg.Targets
	if *nmapFlag != "" {
		imported, err := parser.ParseFile(*nmapFlag, parser.FormatUnknown)
		if err != nil {
			logger.Fatal(err)
		}
		logger.Infof("imported %d RTSP targets from %s", len(imported), *nmapFlag)
		for _, t := range imported {
			sources = append(sources, t.String())
		}
	}
	if len(sources) == 0 && utils.HasStdin() {
		sources = utils.ReadLines(os.Stdin)
	}
	if len(sources) == 0 {
		logger.Fatal("no targets specified, use -t, --nmap or pipe targets to stdin")
	}

	usernames, passwords, err := loadWordlists(cfg)
	if err != nil {
		logger.Fatal(err)
	}

	dialer, err := utils.NewProxyAwareDialer(cfg.Proxy, cfg.ProxyAuth, cfg.Timeout)
	if err != nil {
		logger.Fatal(err)
	}

	options := scanner.Options{
		Timeout:        cfg.Timeout,
		Concurrency:    cfg.Concurrency,
		Rate:           cfg.Rate,
		StopOnSuccess:  cfg.StopOnSuccess,
		JSON:           cfg.JSON,
		OutputFileName: cfg.Output,
		Usernames:      usernames,
		Passwords:      passwords,
		Dialer:         dialer,
	}
	s, err := scanner.NewScanner(&options)
	if err != nil {
		logger.Fatal(err)
	}

	// set up context with signal-based cancellation (Ctrl+C / SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Infof("starting scan with %d usernames and %d passwords", len(usernames), len(passwords))

	// live status line on interactive terminals only
	var progress *scanner.Progress
	if !cfg.Quiet && !cfg.Debug && isatty.IsTerminal(os.Stderr.Fd()) {
		total := estimateAttempts(sources, int64(len(usernames))*int64(len(passwords)))
		progress = scanner.NewProgress(s, total)
		logger.SetProgressClearer(progress.Clear)
		progress.Start()
	}

	targets := make(chan netip.AddrPort, 256)
	go scanner.SendTargets(ctx, targets, defaultRTSPPort, sources)

	summary := s.Run(ctx, targets)

	if progress != nil {
		progress.Stop()
	}
	s.Stop()

	logger.Infof("scan finished in %s: %d attempts, %d valid, %d invalid, %d network errors, %d protocol errors",
		summary.Elapsed.Round(time.Millisecond), summary.Attempts, summary.Found,
		summary.Invalid, summary.NetworkErrors, summary.ProtocolErrors)
}
