// Command console is the staff-side terminal for the parts-quotation
// workflow: log in, browse suppliers, vehicles and quotations, compare
// vendor offers and confirm a cross-vendor order.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/techcorp/partsquote/auth"
	"github.com/techcorp/partsquote/internal/config"
	errs "github.com/techcorp/partsquote/internal/errors"
	"github.com/techcorp/partsquote/internal/metrics"
	"github.com/techcorp/partsquote/internal/utils"
	"github.com/techcorp/partsquote/parts"
	"github.com/techcorp/partsquote/quotations"
	"github.com/techcorp/partsquote/rest"
	"github.com/techcorp/partsquote/session"
	"github.com/techcorp/partsquote/suppliers"
	"github.com/techcorp/partsquote/vehicles"
	"github.com/techcorp/partsquote/vendorquote"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

type console struct {
	cfg        *config.Config
	log        zerolog.Logger
	sess       *session.Manager
	suppliers  *suppliers.Service
	groups     *suppliers.GroupService
	vehicles   *vehicles.Service
	parts      *parts.Service
	quotations *quotations.Service
	vendor     *vendorquote.Service
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(args) == 0 {
		usage()
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logger := newLogger(cfg.Console.LogLevel)
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	displayAppName("partsquote")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authClient := auth.NewClient(cfg.API.BaseURL, auth.WithLogger(logger))
	sess := session.NewManager(authClient,
		session.WithLogger(logger),
		session.WithRefreshMargin(cfg.Auth.RefreshMargin),
		session.WithSessionExpiredCallback(func() {
			fmt.Fprintln(os.Stderr, "session ended, log in again")
		}),
	)
	defer sess.Close()

	api := rest.NewClient(cfg.API.BaseURL, rest.WithLogger(logger), rest.WithCredentials(sess))
	publicAPI := rest.NewClient(cfg.API.BaseURL, rest.WithLogger(logger))

	c := &console{
		cfg:        cfg,
		log:        logger,
		sess:       sess,
		suppliers:  suppliers.NewService(api),
		groups:     suppliers.NewGroupService(api),
		vehicles:   vehicles.NewService(api),
		parts:      parts.NewService(api),
		quotations: quotations.NewService(api),
		vendor:     vendorquote.NewService(publicAPI),
	}

	command, commandArgs := args[0], args[1:]

	// The vendor submission page is public; everything else needs a login.
	if command != "vendor-quote" {
		if err := c.login(ctx); err != nil {
			return err
		}
	}

	switch command {
	case "suppliers":
		return c.listSuppliers(ctx, commandArgs)
	case "groups":
		return c.listGroups(ctx, commandArgs)
	case "vehicles":
		return c.listVehicles(ctx, commandArgs)
	case "parts":
		return c.listParts(ctx, commandArgs)
	case "quotations":
		return c.listQuotations(ctx, commandArgs)
	case "watch":
		return c.watchQuotations(ctx, commandArgs)
	case "quotation":
		return c.showQuotation(ctx, commandArgs)
	case "confirm":
		return c.confirmOrder(ctx, commandArgs)
	case "vendor-quote":
		return c.vendorQuote(ctx, commandArgs)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func usage() {
	fmt.Println(`usage: console <command> [flags]

commands:
  suppliers    [-name N] [-page P]         list suppliers
  groups       [-description D] [-page P]  list supplier groups
  vehicles     [-model M] [-brand B] [-engine E] [-fuel F] [-page P]
  parts        [-description D] [-page P]  list catalog parts
  quotations   [-plate L] [-status S] [-page P]
  watch        [-plate L] [-status S]      poll the quotation list
  quotation    <id> [-by-vendor]           show offer comparison
  confirm      <id> -pick part=vendorId [-pick ...]
  vendor-quote <token> [-submit file.json] public vendor submission`)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

func displayAppName(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

// login reads credentials from the environment or prompts for them, then
// establishes the session. Failures surface as one generic message.
func (c *console) login(ctx context.Context) error {
	email := os.Getenv("CONSOLE_EMAIL")
	password := os.Getenv("CONSOLE_PASSWORD")

	reader := bufio.NewReader(os.Stdin)
	if email == "" {
		fmt.Print("email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Print("password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	if err := c.sess.Login(ctx, email, password, c.cfg.Auth.TenantID); err != nil {
		if errs.Is(err, errs.ErrTransport) {
			return errors.New("could not reach the quotation service, try again later")
		}
		return errors.New("invalid credentials")
	}

	user := c.sess.User()
	fmt.Printf("logged in as %s (%s)\n\n", user.Name, user.Role)
	return nil
}

func (c *console) listSuppliers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("suppliers", flag.ExitOnError)
	name := fs.String("name", "", "filter by name")
	page := fs.Int("page", 0, "page number")
	fs.Parse(args)

	result, err := c.suppliers.List(ctx, suppliers.ListParams{Name: *name, Page: *page, Size: c.cfg.Console.PageSize})
	if err != nil {
		return listError(err)
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tSELLER\tCLASSIFICATION\tACTIVE")
	for _, s := range result.Content {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\n", s.ID, s.Name, s.SellerName, s.Classification, s.Active)
	}
	w.Flush()
	printPageFooter(result.Number, result.TotalPages, result.TotalElements)
	return nil
}

func (c *console) listGroups(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("groups", flag.ExitOnError)
	description := fs.String("description", "", "filter by description")
	page := fs.Int("page", 0, "page number")
	fs.Parse(args)

	result, err := c.groups.List(ctx, suppliers.GroupListParams{Description: *description, Page: *page, Size: c.cfg.Console.PageSize})
	if err != nil {
		return listError(err)
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tDESCRIPTION\tSUPPLIERS\tACTIVE")
	for _, g := range result.Content {
		fmt.Fprintf(w, "%d\t%s\t%d\t%v\n", g.ID, g.Description, len(g.Suppliers), g.Active)
	}
	w.Flush()
	printPageFooter(result.Number, result.TotalPages, result.TotalElements)
	return nil
}

func (c *console) listVehicles(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("vehicles", flag.ExitOnError)
	model := fs.String("model", "", "filter by model")
	brand := fs.String("brand", "", "filter by brand")
	engine := fs.String("engine", "", "filter by engine")
	fuel := fs.String("fuel", "", "filter by fuel type")
	page := fs.Int("page", 0, "page number")
	fs.Parse(args)

	result, err := c.vehicles.Search(ctx, vehicles.SearchParams{
		Model:    *model,
		Brand:    *brand,
		Engine:   *engine,
		FuelType: vehicles.FuelType(*fuel),
		Page:     *page,
		Size:     c.cfg.Console.PageSize,
	})
	if err != nil {
		return listError(err)
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tPLATE\tBRAND\tMODEL\tYEAR\tENGINE\tFUEL")
	for _, v := range result.Content {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n", v.ID, v.LicensePlate, v.Brand, v.Model, v.Year, v.Engine, v.FuelType)
	}
	w.Flush()
	printPageFooter(result.Number, result.TotalPages, result.TotalElements)
	return nil
}

func (c *console) listParts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("parts", flag.ExitOnError)
	description := fs.String("description", "", "filter by description")
	page := fs.Int("page", 0, "page number")
	fs.Parse(args)

	result, err := c.parts.List(ctx, parts.ListParams{Description: *description, Page: *page, Size: c.cfg.Console.PageSize})
	if err != nil {
		return listError(err)
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tDESCRIPTION\tVEHICLE")
	for _, p := range result.Content {
		fmt.Fprintf(w, "%d\t%s\t%d\n", p.ID, p.Description, p.VehicleID)
	}
	w.Flush()
	printPageFooter(result.Number, result.TotalPages, result.TotalElements)
	return nil
}

func quotationListFlags(fs *flag.FlagSet) (plate, status *string, page *int) {
	plate = fs.String("plate", "", "filter by license plate")
	status = fs.String("status", "", "filter by status")
	page = fs.Int("page", 0, "page number")
	return
}

func (c *console) listQuotations(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("quotations", flag.ExitOnError)
	plate, status, page := quotationListFlags(fs)
	fs.Parse(args)

	result, err := c.quotations.List(ctx, quotations.ListParams{
		LicensePlate: *plate,
		Status:       quotations.Status(*status),
		Page:         *page,
		Size:         c.cfg.Console.PageSize,
	})
	if err != nil {
		return listError(err)
	}

	printQuotationPage(result)
	return nil
}

// watchQuotations polls the list until interrupted. A metrics endpoint is
// exposed while the watch runs.
func (c *console) watchQuotations(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	plate, status, page := quotationListFlags(fs)
	metricsAddr := fs.String("metrics-addr", ":2112", "prometheus endpoint address")
	fs.Parse(args)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: *metricsAddr, Handler: mux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.log.Warn().Err(err).Msg("metrics endpoint failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("watching quotations every %s, Ctrl-C to stop\n", c.cfg.Console.PollInterval)
	err := c.quotations.Watch(ctx, quotations.ListParams{
		LicensePlate: *plate,
		Status:       quotations.Status(*status),
		Page:         *page,
		Size:         c.cfg.Console.PageSize,
	}, c.cfg.Console.PollInterval, func(page rest.Page[quotations.Quotation], err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		}
		printQuotationPage(page)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *console) showQuotation(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("quotation", flag.ExitOnError)
	byVendor := fs.Bool("by-vendor", false, "group offers by vendor instead of by part")
	if len(args) == 0 {
		return errors.New("quotation: missing id")
	}
	id := args[0]
	fs.Parse(args[1:])

	quotation, err := c.quotations.Get(ctx, id)
	if err != nil {
		if errs.Is(err, errs.ErrNotFound) {
			fmt.Printf("quotation %s not found\n", id)
			return nil
		}
		return err
	}

	fmt.Printf("Quotation %s  [%s]\n", quotation.ID, quotation.Status.Label())
	fmt.Printf("%s %s (%d)  plate %s\n", quotation.Brand, quotation.Model, quotation.Year, quotation.LicensePlate)
	if requester := utils.Value(quotation.Requester); requester.Name != "" {
		fmt.Printf("requested by %s\n", requester.Name)
	}
	fmt.Println()

	offers, err := c.quotations.Offers(ctx, id)
	if err != nil {
		return err
	}
	if len(offers) == 0 {
		fmt.Println("no offers yet")
		return nil
	}

	if *byVendor {
		printByVendor(quotation, offers)
	} else {
		printByPart(offers)
	}
	return nil
}

func printByPart(offers []quotations.VendorOffer) {
	groups := quotations.GroupByPart(offers)
	for _, part := range groups.Parts() {
		fmt.Printf("%s (%d un.)\n", part.PartName, part.Quantity)
		w := newTable()
		fmt.Fprintln(w, "  VENDOR\tUNIT\tTOTAL\tFREIGHT\t")
		for _, q := range part.Quotes {
			badge := ""
			if q.Best {
				badge = "best price"
			}
			fmt.Fprintf(w, "  %s\t%.2f\t%.2f\t%.2f\t%s\n", q.VendorName, q.UnitPrice, q.LineTotal, q.FreightCost, badge)
		}
		w.Flush()
		fmt.Println()
	}
}

func printByVendor(quotation *quotations.Quotation, offers []quotations.VendorOffer) {
	bundles := quotations.GroupByVendor(quotation, offers)
	w := newTable()
	fmt.Fprintln(w, "VENDOR\tSUBTOTAL\tFREIGHT\tTOTAL\t")
	for _, b := range bundles {
		badge := ""
		switch {
		case b.Confirmed:
			badge = "order confirmed"
		case b.Best:
			badge = "best price"
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%s\n", b.Offer.VendorName, b.PartsSubtotal, b.Offer.FreightCost, b.Total, badge)
	}
	w.Flush()
}

type pickList []string

func (p *pickList) String() string { return strings.Join(*p, ",") }
func (p *pickList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func (c *console) confirmOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("confirm", flag.ExitOnError)
	var picks pickList
	fs.Var(&picks, "pick", "part=vendorId selection, repeatable")
	if len(args) == 0 {
		return errors.New("confirm: missing quotation id")
	}
	id := args[0]
	fs.Parse(args[1:])
	if len(picks) == 0 {
		return errors.New("confirm: at least one -pick is required")
	}

	quotation, err := c.quotations.Get(ctx, id)
	if err != nil {
		return err
	}
	offers, err := c.quotations.Offers(ctx, id)
	if err != nil {
		return err
	}
	groups := quotations.GroupByPart(offers)

	selection := quotations.NewSelection(quotation.Status)
	for _, pick := range picks {
		partName, vendorID, ok := strings.Cut(pick, "=")
		if !ok {
			return fmt.Errorf("confirm: malformed pick %q", pick)
		}
		bucket, ok := groups.Get(partName)
		if !ok {
			return fmt.Errorf("confirm: no offers for part %q", partName)
		}
		var entry *quotations.SelectionEntry
		for _, q := range bucket.Quotes {
			if q.VendorID == vendorID {
				entry = utils.Ptr(quotations.SelectionEntry{
					PartName:    partName,
					VendorID:    q.VendorID,
					VendorName:  q.VendorName,
					Quantity:    bucket.Quantity,
					UnitPrice:   q.UnitPrice,
					FreightCost: q.FreightCost,
				})
				break
			}
		}
		if entry == nil {
			return fmt.Errorf("confirm: vendor %q has no offer for part %q", vendorID, partName)
		}
		if err := selection.Toggle(*entry, true); err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
	}

	fmt.Printf("order total: %.2f\n", selection.Total())
	confirmed, err := c.quotations.ConfirmOrder(ctx, id, selection)
	if err != nil {
		return err
	}
	fmt.Printf("order confirmed, quotation now %s\n", confirmed.Status.Label())
	return nil
}

func (c *console) vendorQuote(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("vendor-quote", flag.ExitOnError)
	submitFile := fs.String("submit", "", "JSON file with the offer to submit")
	if len(args) == 0 {
		return errors.New("vendor-quote: missing token")
	}
	token := args[0]
	fs.Parse(args[1:])

	request, err := c.vendor.Fetch(ctx, token)
	if err != nil {
		if errs.Is(err, errs.ErrNotFound) {
			fmt.Println("quotation not found or token invalid")
			return nil
		}
		return err
	}

	fmt.Printf("Quotation for %s (%s, %s)\n", request.Vehicle, request.Engine, request.FuelType)
	fmt.Printf("Requested by %s (%s, %s)\n", request.RequestingCompany.Name, request.RequestingCompany.ContactName, request.RequestingCompany.Phone)
	for _, item := range request.Items {
		fmt.Printf("  - %s (%d un.)\n", item.PartName, item.Quantity)
	}
	if !request.Pending() {
		fmt.Printf("this quotation no longer accepts submissions (%s)\n", request.Status)
		return nil
	}

	if *submitFile == "" {
		return nil
	}

	data, err := os.ReadFile(*submitFile)
	if err != nil {
		return fmt.Errorf("vendor-quote: read %s: %w", *submitFile, err)
	}
	var submission vendorquote.Submission
	if err := json.Unmarshal(data, &submission); err != nil {
		return fmt.Errorf("vendor-quote: parse %s: %w", *submitFile, err)
	}

	if err := c.vendor.Submit(ctx, token, submission); err != nil {
		return err
	}
	fmt.Println("offer submitted")
	return nil
}

func printQuotationPage(page rest.Page[quotations.Quotation]) {
	w := newTable()
	fmt.Fprintln(w, "ID\tPLATE\tVEHICLE\tITEMS\tSTATUS\tCREATED")
	for _, q := range page.Content {
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%d\t%s\t%s\n",
			q.ID, q.LicensePlate, q.Brand, q.Model, len(q.Items), q.Status.Label(), q.CreatedAt.Format("02/01/2006 15:04"))
	}
	w.Flush()
	printPageFooter(page.Number, page.TotalPages, page.TotalElements)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func printPageFooter(number, totalPages int, totalElements int64) {
	fmt.Printf("\npage %d of %d (%d total)\n", number+1, totalPages, totalElements)
}

func listError(err error) error {
	if errs.Is(err, errs.ErrTransport) {
		return errors.New("could not reach the quotation service, showing nothing")
	}
	return err
}
