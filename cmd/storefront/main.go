package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-storefront-client/auth"
	"github.com/jrsteele09/go-storefront-client/credentials/filestore"
	"github.com/jrsteele09/go-storefront-client/internal/config"
	"github.com/jrsteele09/go-storefront-client/products"
	"github.com/jrsteele09/go-storefront-client/session"
	"github.com/jrsteele09/go-storefront-client/transport"
)

const usage = `usage: storefront <command> [flags]

commands:
  register  -name NAME -email EMAIL -password PASSWORD [-phone PHONE]
  login     -email EMAIL -password PASSWORD
  logout
  whoami
  products  [-search TEXT] [-category NAME] [-min PRICE] [-max PRICE]
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func run(args []string) error {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if os.Getenv("DEBUG") == "" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	c := config.New()

	app, err := newApp(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "register":
		return app.register(ctx, args[1:])
	case "login":
		displayAppname(c.GetAppName())
		return app.login(ctx, args[1:])
	case "logout":
		return app.logout(ctx)
	case "whoami":
		return app.whoami()
	case "products":
		return app.products(ctx, args[1:])
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

type app struct {
	auth     *auth.Service
	productsSvc *products.Service
}

func newApp(c config.Config) (*app, error) {
	timeout, err := time.ParseDuration(c.GetTimeout())
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	httpTransport, err := transport.New(c.GetBaseURL(), transport.WithTimeout(timeout))
	if err != nil {
		return nil, err
	}

	store, err := filestore.New(c.GetCredentialsFile(), strings.ToLower(c.GetAppName()))
	if err != nil {
		return nil, err
	}

	bus := evbus.New()
	if err := bus.Subscribe(session.TopicSessionExpired, func(...interface{}) {
		fmt.Fprintln(os.Stderr, "session expired, please sign in again")
	}); err != nil {
		return nil, err
	}

	sessionManager, err := session.New(httpTransport, store, session.WithBus(bus))
	if err != nil {
		return nil, err
	}

	authService, err := auth.NewService(sessionManager, auth.WithBus(bus))
	if err != nil {
		return nil, err
	}

	productService, err := products.NewService(sessionManager)
	if err != nil {
		return nil, err
	}

	return &app{auth: authService, productsSvc: productService}, nil
}

func (a *app) register(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("register", flag.ExitOnError)
	name := flags.String("name", "", "full name")
	email := flags.String("email", "", "email address")
	password := flags.String("password", "", "password")
	phone := flags.String("phone", "", "phone number")
	if err := flags.Parse(args); err != nil {
		return err
	}

	user, err := a.auth.Register(ctx, auth.RegisterRequest{
		FullName:    *name,
		Email:       *email,
		Password:    *password,
		PhoneNumber: *phone,
	})
	if err != nil {
		return err
	}

	fmt.Printf("registered %s, please sign in\n", user.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("login", flag.ExitOnError)
	email := flags.String("email", "", "email address")
	password := flags.String("password", "", "password")
	if err := flags.Parse(args); err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, auth.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return err
	}

	fmt.Printf("signed in as %s (%s) -> %s\n", user.FullName, user.Role, auth.LandingRoute(user.Role))
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

func (a *app) whoami() error {
	user, err := a.auth.CurrentUser()
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> role=%s\n", user.FullName, user.Email, user.Role)
	return nil
}

func (a *app) products(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("products", flag.ExitOnError)
	search := flags.String("search", "", "search text")
	category := flags.String("category", "", "category")
	minPrice := flags.Float64("min", 0, "minimum price")
	maxPrice := flags.Float64("max", 0, "maximum price")
	if err := flags.Parse(args); err != nil {
		return err
	}

	listing, err := a.productsSvc.List(ctx, products.Filters{
		Search:   *search,
		Category: *category,
		MinPrice: *minPrice,
		MaxPrice: *maxPrice,
	})
	if err != nil {
		return err
	}

	for _, product := range listing {
		fmt.Printf("%-24s %-20s %8.2f  stock=%d\n", product.ID, product.Name, product.Price, product.Stock)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
