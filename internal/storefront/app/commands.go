package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aussiebroadwan/storefront/pkg/cart"
	"github.com/aussiebroadwan/storefront/pkg/screen"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
	"github.com/aussiebroadwan/storefront/pkg/validate"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

var errUsage = errors.New("usage")

const usage = `storefront - manage the store catalogue and register sales

USAGE:
  storefront [--config FILE] <command> [options]

COMMANDS:
  login      --email E --password P
  register   --first-name F --last-name L --email E --password P
  logout
  whoami
  products   list | get ID | create [fields] | update ID [fields] | delete ID
             fields: --name N --price P --stock S --image-url U
  sale       --item ID:QTY [--item ID:QTY ...]
  report     --start YYYY-MM-DD --end YYYY-MM-DD [--details]
  help

ENVIRONMENT:
  STOREFRONT_CONFIG       YAML config file
  STOREFRONT_API_BASEURL  API base URL, e.g. https://localhost:7207/api
  STOREFRONT_STORE_DRIVER session store: file, sqlite, redis, memory
`

// Run executes one command and returns the process exit code. Results go to
// stdout; errors go to stderr.
func (app *Application) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(app.stderr, usage)
		return ExitUsage
	}

	command, rest := args[0], args[1:]
	log := app.logger.With("command", command)

	var err error
	switch command {
	case "login":
		err = app.login(ctx, rest)
	case "register":
		err = app.register(ctx, rest)
	case "logout":
		err = app.logout(ctx)
	case "whoami":
		err = app.whoami(ctx)
	case "products":
		err = app.products(ctx, rest)
	case "sale":
		err = app.sale(ctx, rest)
	case "report":
		err = app.report(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(app.stdout, usage)
		return ExitOK
	default:
		fmt.Fprintf(app.stderr, "unknown command: %s\n\n%s", command, usage)
		return ExitUsage
	}

	if err == nil {
		return ExitOK
	}
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}

	log.Debug("command failed", "error", err)
	return app.fail(err)
}

// fail prints err for the user and picks the exit code.
func (app *Application) fail(err error) int {
	var (
		fieldErrs validate.Errors
		apiErr    *storefrontsdk.APIError
	)

	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(app.stderr, err)
		return ExitUsage
	case errors.Is(err, storefrontsdk.ErrSessionExpired):
		fmt.Fprintln(app.stderr, storefrontsdk.ErrSessionExpired.Error())
	case errors.Is(err, storefrontsdk.ErrNoSession):
		fmt.Fprintln(app.stderr, "not logged in, run: storefront login")
	case errors.As(err, &fieldErrs):
		names := make([]string, 0, len(fieldErrs))
		for name := range fieldErrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(app.stderr, "%s: %s\n", name, fieldErrs[name])
		}
	case errors.As(err, &apiErr):
		fmt.Fprintln(app.stderr, apiErr.Message)
	default:
		fmt.Fprintln(app.stderr, err)
	}
	return ExitError
}

func (app *Application) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(app.stderr)
	return fs
}

// parse wraps flag parse failures as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", errUsage, fs.Name(), err)
	}
	return nil
}

// ============================================================================
// Session commands
// ============================================================================

func (app *Application) login(ctx context.Context, args []string) error {
	var form screen.LoginForm
	fs := app.flagSet("login")
	fs.StringVar(&form.Email, "email", "", "account email")
	fs.StringVar(&form.Password, "password", "", "account password")
	if err := parse(fs, args); err != nil {
		return err
	}

	if errs := form.Validate(app.locale); errs != nil {
		return errs
	}

	session, err := app.client.AuthenticateWithPassword(ctx, form.Email, form.Password)
	if err != nil {
		return err
	}
	return app.printWelcome(ctx, session)
}

func (app *Application) register(ctx context.Context, args []string) error {
	var form screen.RegisterForm
	fs := app.flagSet("register")
	fs.StringVar(&form.FirstName, "first-name", "", "first name")
	fs.StringVar(&form.LastName, "last-name", "", "last name")
	fs.StringVar(&form.Email, "email", "", "account email")
	fs.StringVar(&form.Password, "password", "", "account password")
	if err := parse(fs, args); err != nil {
		return err
	}

	if errs := form.Validate(app.locale); errs != nil {
		return errs
	}

	session, err := app.client.RegisterAndAuthenticate(ctx, form.Request())
	if err != nil {
		return err
	}
	return app.printWelcome(ctx, session)
}

func (app *Application) printWelcome(ctx context.Context, session *storefrontsdk.Session) error {
	user, err := session.User(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "logged in as %s <%s>\n", user.FullName(), user.Email)
	return nil
}

func (app *Application) logout(ctx context.Context) error {
	session, err := app.session(ctx)
	if errors.Is(err, storefrontsdk.ErrNoSession) {
		fmt.Fprintln(app.stdout, "already logged out")
		return nil
	}
	if err != nil {
		return err
	}

	if err := session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.stdout, "logged out")
	return nil
}

func (app *Application) whoami(ctx context.Context) error {
	session, err := app.session(ctx)
	if err != nil {
		return err
	}

	user, err := session.User(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s <%s>\n", user.FullName(), user.Email)
	if exp, ok := session.AccessTokenExpiry(ctx); ok {
		fmt.Fprintf(app.stdout, "access token expires %s\n", exp.Local().Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

// ============================================================================
// Product commands
// ============================================================================

func (app *Application) products(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: products needs a subcommand: list, get, create, update, delete", errUsage)
	}

	session, err := app.session(ctx)
	if err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return app.listProducts(ctx, session)
	case "get":
		id, err := productID(rest)
		if err != nil {
			return err
		}
		p, err := session.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		app.printProducts(*p)
		return nil
	case "create":
		return app.saveProduct(ctx, session, nil, rest)
	case "update":
		id, err := productID(rest)
		if err != nil {
			return err
		}
		current, err := session.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		return app.saveProduct(ctx, session, current, rest[1:])
	case "delete":
		id, err := productID(rest)
		if err != nil {
			return err
		}
		if err := session.DeleteProduct(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(app.stdout, "product %d deleted\n", id)
		return nil
	}

	return fmt.Errorf("%w: unknown products subcommand %q", errUsage, sub)
}

func (app *Application) listProducts(ctx context.Context, session *storefrontsdk.Session) error {
	products, err := session.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(app.stdout, "no products")
		return nil
	}
	app.printProducts(products...)
	return nil
}

// saveProduct drives the product form: create when current is nil, edit otherwise.
func (app *Application) saveProduct(ctx context.Context, session *storefrontsdk.Session, current *storefrontsdk.Product, args []string) error {
	form := screen.NewProductForm(app.locale)
	if current == nil {
		if err := form.OpenCreate(); err != nil {
			return err
		}
	} else if err := form.OpenEdit(*current); err != nil {
		return err
	}

	fs := app.flagSet("products")
	fs.StringVar(&form.Input.Name, "name", form.Input.Name, "product name")
	fs.Float64Var(&form.Input.Price, "price", form.Input.Price, "unit price")
	fs.IntVar(&form.Input.Stock, "stock", form.Input.Stock, "units in stock")
	fs.StringVar(&form.Input.ImageURL, "image-url", form.Input.ImageURL, "image URL")
	if err := parse(fs, args); err != nil {
		return err
	}

	product, err := form.Submit(ctx, session)
	if err != nil {
		return err
	}

	verb := "created"
	if current != nil {
		verb = "updated"
	}
	fmt.Fprintf(app.stdout, "product %d %s\n", product.ID, verb)
	app.printProducts(*product)
	return nil
}

func (app *Application) printProducts(products ...storefrontsdk.Product) {
	w := tabwriter.NewWriter(app.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tIMAGE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\t%s\n", p.ID, p.Name, p.Price, p.Stock, p.ImageURL)
	}
	_ = w.Flush()
}

func productID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: missing product id", errUsage)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid product id %q", errUsage, args[0])
	}
	return id, nil
}

// ============================================================================
// Sale commands
// ============================================================================

// saleItem is one --item ID:QTY flag.
type saleItem struct {
	ProductID int
	Quantity  int
}

// saleItems collects repeated --item flags.
type saleItems []saleItem

func (s *saleItems) String() string {
	parts := make([]string, 0, len(*s))
	for _, it := range *s {
		parts = append(parts, fmt.Sprintf("%d:%d", it.ProductID, it.Quantity))
	}
	return strings.Join(parts, ",")
}

func (s *saleItems) Set(v string) error {
	idStr, qtyStr, ok := strings.Cut(v, ":")
	if !ok {
		qtyStr = "1"
	}

	id, err := strconv.Atoi(strings.TrimSpace(idStr))
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid product id in %q", v)
	}
	qty, err := strconv.Atoi(strings.TrimSpace(qtyStr))
	if err != nil {
		return fmt.Errorf("invalid quantity in %q", v)
	}

	*s = append(*s, saleItem{ProductID: id, Quantity: qty})
	return nil
}

func (app *Application) sale(ctx context.Context, args []string) error {
	var items saleItems
	fs := app.flagSet("sale")
	fs.Var(&items, "item", "product and quantity as ID:QTY, repeatable")
	if err := parse(fs, args); err != nil {
		return err
	}

	session, err := app.session(ctx)
	if err != nil {
		return err
	}

	c := cart.New(
		cart.WithClock(app.now),
		cart.WithNotifier(func(level cart.Level, msg string) {
			if level == cart.LevelError {
				fmt.Fprintln(app.stderr, msg)
				return
			}
			fmt.Fprintln(app.stdout, msg)
		}),
	)

	if len(items) == 0 {
		_, err := c.Checkout(ctx, session)
		return err
	}

	products, err := session.ListProducts(ctx)
	if err != nil {
		return err
	}
	byID := make(map[int]storefrontsdk.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return fmt.Errorf("product %d not found", it.ProductID)
		}
		// Nothing is submitted unless every line fits
		if err := c.Add(p, it.Quantity); err != nil {
			return err
		}
	}

	app.printCart(c)

	sale, err := c.Checkout(ctx, session)
	if err != nil {
		return err
	}
	if sale.ID != 0 {
		fmt.Fprintf(app.stdout, "sale %d registered on %s\n", sale.ID, sale.Date)
	}
	return nil
}

func (app *Application) printCart(c *cart.Cart) {
	lines := c.Lines()
	if len(lines) == 0 {
		return
	}

	w := tabwriter.NewWriter(app.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tQTY\tUNIT\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\n", l.Product.Name, l.Quantity, l.UnitPrice, l.Subtotal())
	}
	fmt.Fprintf(w, "TOTAL\t\t\t%.2f\n", c.Total())
	_ = w.Flush()
}

func (app *Application) report(ctx context.Context, args []string) error {
	r := &screen.ReportRange{Locale: app.locale}
	fs := app.flagSet("report")
	fs.StringVar(&r.Start, "start", "", "first day, YYYY-MM-DD")
	fs.StringVar(&r.End, "end", "", "last day, YYYY-MM-DD")
	details := fs.Bool("details", false, "list the lines of each sale")
	if err := parse(fs, args); err != nil {
		return err
	}

	session, err := app.session(ctx)
	if err != nil {
		return err
	}

	sales, err := r.Fetch(ctx, session)
	if err != nil {
		if errors.Is(err, storefrontsdk.ErrSessionExpired) {
			return err
		}
		return errors.New(r.Message)
	}

	if len(sales) == 0 {
		fmt.Fprintln(app.stdout, "no sales in range")
		return nil
	}

	w := tabwriter.NewWriter(app.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tITEMS\tTOTAL")
	for _, s := range sales {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\n", s.ID, s.Date, len(s.Items), s.Total)
		if *details {
			for _, it := range s.Items {
				fmt.Fprintf(w, "\t  %s\t%d x %.2f\t%.2f\n", itemName(it), it.Quantity, it.UnitPrice, float64(it.Quantity)*it.UnitPrice)
			}
		}
	}
	fmt.Fprintf(w, "\t\t\t%.2f\n", r.Total())
	_ = w.Flush()
	return nil
}

// itemName falls back to the product id when the API did not expand the product.
func itemName(it storefrontsdk.SaleItem) string {
	if it.Product.Name != "" {
		return it.Product.Name
	}
	return fmt.Sprintf("#%d", it.ProductID)
}
