package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"ticketline/src/booking"
	"ticketline/src/cart"
	"ticketline/src/checkout"
	"ticketline/src/config"
	"ticketline/src/devserver"
	"ticketline/src/invoices"
	"ticketline/src/lib"
	"ticketline/src/models"
	"ticketline/src/seatmap"
	"ticketline/src/types"
	"ticketline/src/utils"

	"github.com/covalenthq/lumberjack"
	"github.com/joho/godotenv"
)

const usage = `usage: ticketline <command> [flags]

commands:
  serve      run the development stub backend
  events     list events
  seatmap    show the seatmap of an event
  reserve    reserve selected seats (optionally straight into the cart)
  cart       show the cart
  cart-add   add a merchandise or reward line to the cart
  cart-set   change the quantity of a cart line
  cart-rm    remove a cart line
  checkout   check the cart out
  tickets    list reserved/purchased/cancelled tickets
  buy        purchase selected reserved tickets outright
  tocart     move selected reserved tickets into the cart
  cancel     cancel selected reservations or purchases
  download   download the invoices of selected purchased tickets
  qr         save the e-ticket QR code of a purchased ticket
`

func initLogger() {
	cwd, _ := os.Getwd()
	log.SetOutput(&lumberjack.Logger{
		Filename:   path.Join(cwd, "logs", "client.log"),
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	if env := os.Getenv("TICKETLINE_ENV"); env == "" || env == "local" {
		cwd, _ := os.Getwd()
		godotenv.Load(path.Join(cwd, ".env"))
	}
	initLogger()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]

	if command == "serve" {
		server, err := devserver.New(config.GetDSN())
		if err != nil {
			log.Fatalf("Could not start devserver: %s\n", err.Error())
		}
		if err := server.Seed(); err != nil {
			log.Fatalf("Could not seed devserver: %s\n", err.Error())
		}
		if err := server.Run(config.GetServeAddr()); err != nil {
			log.Fatal(err)
		}
		return
	}

	token := config.GetAPIToken()
	if token != "" && lib.TokenExpired(token, time.Now()) {
		fmt.Fprintln(os.Stderr, "your session token has expired, please log in again")
		os.Exit(1)
	}
	api := lib.NewClient(config.GetAPIBaseURL(), token)
	notifier := &utils.LogNotifier{}
	ctx := context.Background()

	var err error
	switch command {
	case "events":
		err = runEvents(ctx, api)
	case "seatmap":
		err = runSeatmap(ctx, api, args)
	case "reserve":
		err = runReserve(ctx, api, notifier, args)
	case "cart":
		err = runCartShow(ctx, api, notifier)
	case "cart-add":
		err = runCartAdd(ctx, api, notifier, args)
	case "cart-set":
		err = runCartSet(ctx, api, notifier, args)
	case "cart-rm":
		err = runCartRemove(ctx, api, notifier, args)
	case "checkout":
		err = runCheckout(ctx, api, notifier, args)
	case "tickets":
		err = runTickets(ctx, api, notifier, args)
	case "buy":
		err = runBuy(ctx, api, notifier, args)
	case "tocart":
		err = runToCart(ctx, api, notifier, args)
	case "cancel":
		err = runCancel(ctx, api, notifier, args)
	case "download":
		err = runDownload(ctx, api, notifier, args)
	case "qr":
		err = runQR(ctx, api, notifier, args)
	default:
		fmt.Print(usage)
		os.Exit(2)
	}
	if err != nil {
		os.Exit(1)
	}
}

func runEvents(ctx context.Context, api *lib.Client) error {
	events, err := api.GetEvents(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, utils.FormatError(err))
		return err
	}
	for _, event := range events {
		date := ""
		if event.DateTime != nil {
			date = event.DateTime.Format(config.TIME_DISPLAY_FORMAT)
		}
		fmt.Printf("%4d  %-30s %-16s %s\n", event.ID, event.Title, event.Location, date)
	}
	return nil
}

func loadSeatmap(ctx context.Context, api *lib.Client, eventID uint) (*seatmap.Seatmap, error) {
	resp, err := api.GetSeatmap(ctx, eventID)
	if err != nil {
		fmt.Fprintln(os.Stderr, utils.FormatError(err))
		return nil, err
	}
	return seatmap.New(resp), nil
}

func runSeatmap(ctx context.Context, api *lib.Client, args []string) error {
	fs := flag.NewFlagSet("seatmap", flag.ExitOnError)
	eventID := fs.Uint("event", 0, "event id")
	fs.Parse(args)
	m, err := loadSeatmap(ctx, api, uint(*eventID))
	if err != nil {
		return err
	}
	printSeatmap(m)
	return nil
}

func printSeatmap(m *seatmap.Seatmap) {
	if m.Grid() {
		for row := 0; row < m.GridRows; row++ {
			var b strings.Builder
			for col := 0; col < m.Cols; col++ {
				seat := m.Cells[row*m.Cols+col]
				if seat == nil {
					if m.Stage.Covers(row+1, col+1) {
						b.WriteString("# ")
					} else {
						b.WriteString("  ")
					}
					continue
				}
				b.WriteString(seatGlyph(seat) + " ")
			}
			fmt.Println(b.String())
		}
		return
	}
	for _, row := range m.Rows {
		var b strings.Builder
		for _, seat := range row {
			if seat == nil {
				b.WriteString("  ")
				continue
			}
			b.WriteString(seatGlyph(seat) + " ")
		}
		fmt.Println(b.String())
	}
}

func seatGlyph(seat *models.Seat) string {
	switch seat.Status {
	case types.SEAT_SOLD:
		return "x"
	case types.SEAT_RESERVED:
		return "r"
	case types.SEAT_SELECTED:
		return "+"
	default:
		return "."
	}
}

// parseSeatKeys parses "-seats" input of the form "1-2,1-3".
func parseSeatKeys(input string) []string {
	parts := strings.Split(input, ",")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}

func runReserve(ctx context.Context, api *lib.Client, notifier utils.Notifier, args []string) error {
	fs := flag.NewFlagSet("reserve", flag.ExitOnError)
	eventID := fs.Uint("event", 0, "event id")
	seats := fs.String("seats", "", "seat keys, e.g. 1-2,1-3")
	toCart := fs.Bool("cart", false, "put the reserved tickets into the cart")
	fs.Parse(args)

	m, err := loadSeatmap(ctx, api, uint(*eventID))
	if err != nil {
		return err
	}
	selection := seatmap.NewSelection()
	for _, key := range parseSeatKeys(*seats) {
		seat := m.LookupKey(key)
		if seat == nil {
			notifier.Warning(fmt.Sprintf("No seat at %s", key))
			continue
		}
		if !selection.Toggle(seat) {
			notifier.Warning(fmt.Sprintf("Seat %s is not available", key))
		}
	}

	pipeline := booking.NewPipeline(api, notifier)
	var dest booking.Destination
	if *toCart {
		dest, err = pipeline.AddToCart(ctx, uint(*eventID), selection, m)
	} else {
		dest, err = pipeline.Reserve(ctx, uint(*eventID), selection, m)
	}
	if err != nil {
		return err
	}
	if dest != booking.DEST_NONE {
		fmt.Printf("-> %s\n", dest)
	}
	return nil
}

func loadCart(ctx context.Context, api *lib.Client, notifier utils.Notifier) (*cart.Reconciler, error) {
	reconciler := cart.NewReconciler(api, notifier)
	if err := reconciler.Load(ctx); err != nil {
		return nil, err
	}
	return reconciler, nil
}

func printCart(c *models.Cart) {
	if c.Empty() {
		fmt.Println("cart is empty")
		return
	}
	for _, item := range c.Items {
		if item.Type == types.ITEM_TICKET {
			fmt.Printf("%4d  ticket  %-30s row %d seat %d  %8.2f\n",
				item.ID, item.EventTitle, item.RowNumber, item.SeatNumber, item.UnitPrice)
			continue
		}
		fmt.Printf("%4d  %-6s  %-30s x%-4d (max %d)  %8.2f\n",
			item.ID, strings.ToLower(string(item.Type)), item.Name, item.Quantity, item.MaxQuantity(), item.UnitPrice)
	}
}

func runCartShow(ctx context.Context, api *lib.Client, notifier utils.Notifier) error {
	reconciler, err := loadCart(ctx, api, notifier)
	if err != nil {
		return err
	}
	printCart(reconciler.Cart())
	return nil
}

func runCartAdd(ctx context.Context, api *lib.Client, notifier utils.Notifier, args []string) error {
	fs := flag.NewFlagSet("cart-add", flag.ExitOnError)
	merchID := fs.Uint("merch", 0, "merchandise id")
	qty := fs.Int("qty", 1, "quantity")
	reward := fs.Bool("reward", false, "redeem with reward points")
	fs.Parse(args)

	reconciler, err := loadCart(ctx, api, notifier)
	if err != nil {
		return err
	}
	itemType := types.ITEM_MERCHANDISE
	if *reward {
		itemType = types.ITEM_REWARD
	}
	if err := reconciler.AddMerchandise(ctx, uint(*merchID), itemType, *qty); err != nil {
		return err
	}
	printCart(reconciler.Cart())
	return nil
}

func findCartItem(c *models.Cart, id uint) *models.CartItem {
	for _, item := range c.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func runCartSet(ctx context.Context, api *lib.Client, notifier utils.Notifier, args []string) error {
	fs := flag.NewFlagSet("cart-set", flag.ExitOnError)
	itemID := fs.Uint("item", 0, "cart item id")
	qty := fs.Int("qty", 1, "quantity")
	fs.Parse(args)

	reconciler, err := loadCart(ctx, api, notifier)
	if err != nil {
		return err
	}
	item := findCartItem(reconciler.Cart(), uint(*itemID))
	if item == nil {
		notifier.Error(fmt.Sprintf("No cart item [%d]", *itemID))
		return fmt.Errorf("no cart item %d", *itemID)
	}
	if err := reconciler.UpdateQuantity(ctx, item, *qty); err != nil {
		return err
	}
	printCart(reconciler.Cart())
	return nil
}

func runCartRemove(ctx context.Context, api *lib.Client, notifier utils.Notifier, args []string) error {
	fs := flag.NewFlagSet("cart-rm", flag.ExitOnError)
	itemID := fs.Uint("item", 0, "cart item id")
	fs.Parse(args)

	reconciler, err := loadCart(ctx, api, notifier)
	if err != nil {
		return err
	}
	item := findCartItem(reconciler.Cart(), uint(*itemID))
	if item == nil {
		notifier.Error(fmt.Sprintf("No cart item [%d]", *itemID))
		return fmt.Errorf("no cart item %d", *itemID)
	}
	if err := reconciler.RemoveItem(ctx, item); err != nil {
		return err
	}
	printCart(reconciler.Cart())
	return nil
}

func runCheckout(ctx context.Context, api *lib.Client, notifier utils.Notifier, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	method := fs.String("method", string(types.PAYMENT_CREDIT_CARD), "payment method")
	detail := fs.String("detail", "", "payment detail (card number, account)")
	paypal := fs.Bool("paypal", false, "pay with PayPal")
	download := fs.Bool("download", false, "download invoices after the purchase")
	fs.Parse(args)

	reconciler, err := loadCart(ctx, api, notifier)
	if err != nil {
		return err
	}
	if !reconciler.ProceedToCheckout() {
		return fmt.Errorf("cart is empty")
	}

	orchestrator := checkout.NewOrchestrator(api, notifier)
	orchestrator.SetCart(reconciler.Cart())
	orchestrator.DownloadInvoices = *download
	for _, line := range orchestrator.MerchandiseLines() {
		fmt.Printf("      %-30s x%-4d %8.2f\n", line.Name, line.Quantity, line.TotalPrice)
	}
	for _, line := range orchestrator.TicketLines() {
		fmt.Printf("      %-30s x%-4d %8.2f\n", line.EventTitle, line.TicketCount, line.TotalPrice)
	}

	form := checkout.PaymentForm{PaymentMethod: types.PaymentMethod(*method), PaymentDetail: *detail}
	var ok bool
	if *paypal {
		ok = orchestrator.SubmitPayPal(form)
	} else {
		ok = orchestrator.Submit(form)
	}
	if !ok {
		return fmt.Errorf("payment details rejected")
	}
	return orchestrator.ConfirmCheckout(ctx)
}

func runTickets(ctx context.Context, api *lib.Client, notifier utils.Notifier, args []string) error {
	fs := flag.NewFlagSet("tickets", flag.ExitOnError)
	view := fs.String("view", "reserved", "reserved | purchased | cancelled")
	fs.Parse(args)

	overview := invoices.NewOverview(api, notifier)
	switch *view {
	case "purchased":
		tickets, err := overview.Purchased(ctx)
		if err != nil {
			return err
		}
		for _, t := range tickets {
			fmt.Printf("%4d  %-30s row %d seat %d  invoice %d  %8.2f\n",
				t.ID, t.EventTitle, t.RowNumber, t.SeatNumber, t.InvoiceID, t.Price)
		}
	case "cancelled":
		tickets, err := overview.Cancelled(ctx)
		if err != nil {
			return err
		}
		for _, t := range tickets {
			fmt.Printf("%4d  %-30s credit invoice %d  %8.2f\n", t.ID, t.EventTitle, t.CreditInvoiceID, t.Price)
		}
	default:
		tickets, err := overview.Reserved(ctx)
		if err != nil {
			return err
		}
		for _, t := range tickets {
			fmt.Printf("%4d  %-30s row %d seat %d  expires %s  %8.2f\n",
				t.ID, t.EventTitle, t.RowNumber, t.SeatNumber, t.ExpiresAt().Format(config.TIME_DISPLAY_FORMAT), t.Price)
		}
	}
	return nil
}

func parseIDs(input string) []uint {
	parts := strings.Split(input, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		atoi, err := strconv.Atoi(part)
		if err != nil || atoi <= 0 {
			continue
		}
		ids = append(ids, uint(atoi))
	}
	return ids
}

func selectPurchased(all []*models.TicketPurchased, ids []uint) []*models.TicketPurchased {
	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	selected := make([]*models.TicketPurchased, 0, len(ids))
	for _, t := range all {
		if wanted[t.ID] {
			selected = append(selected, t)
		}
	}
	return selected
}

func runBuy(ctx context.Context, api *lib.Client, notifier utils.Notifier, args []string) error {
	fs := flag.NewFlagSet("buy", flag.ExitOnError)
	ticketIDs := fs.String("tickets", "", "ticket ids, e.g. 3,4")
	fs.Parse(args)

	overview := invoices.NewOverview(api, notifier)
	return overview.BulkPurchaseReserved(ctx, parseIDs(*ticketIDs))
}

func runToCart(ctx context.Context, api *lib.Client, notifier utils.Notifier, args []string) error {
	fs := flag.NewFlagSet("tocart", flag.ExitOnError)
	ticketIDs := fs.String("tickets", "", "ticket ids, e.g. 3,4")
	fs.Parse(args)

	overview := invoices.NewOverview(api, notifier)
	return overview.BulkAddToCart(ctx, parseIDs(*ticketIDs))
}

func runCancel(ctx context.Context, api *lib.Client, notifier utils.Notifier, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	ticketIDs := fs.String("tickets", "", "ticket ids, e.g. 3,4")
	purchased := fs.Bool("purchased", false, "cancel purchased tickets instead of reservations")
	fs.Parse(args)

	overview := invoices.NewOverview(api, notifier)
	ids := parseIDs(*ticketIDs)
	if !*purchased {
		return overview.BulkCancelReservations(ctx, ids)
	}
	all, err := overview.Purchased(ctx)
	if err != nil {
		return err
	}
	return overview.BulkCancelPurchased(ctx, selectPurchased(all, ids))
}

func runDownload(ctx context.Context, api *lib.Client, notifier utils.Notifier, args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	ticketIDs := fs.String("tickets", "", "ticket ids, e.g. 3,4")
	fs.Parse(args)

	overview := invoices.NewOverview(api, notifier)
	all, err := overview.Purchased(ctx)
	if err != nil {
		return err
	}
	for _, filepath := range overview.DownloadSelectedInvoices(ctx, selectPurchased(all, parseIDs(*ticketIDs))) {
		fmt.Println(filepath)
	}
	return nil
}

func runQR(ctx context.Context, api *lib.Client, notifier utils.Notifier, args []string) error {
	fs := flag.NewFlagSet("qr", flag.ExitOnError)
	ticketID := fs.Uint("ticket", 0, "purchased ticket id")
	fs.Parse(args)

	overview := invoices.NewOverview(api, notifier)
	all, err := overview.Purchased(ctx)
	if err != nil {
		return err
	}
	for _, t := range all {
		if t.ID == uint(*ticketID) {
			filepath, err := lib.SaveTicketQR(t, config.GetDownloadsDir())
			if err != nil {
				notifier.Error(utils.FormatError(err))
				return err
			}
			fmt.Println(filepath)
			return nil
		}
	}
	notifier.Error(fmt.Sprintf("No purchased ticket [%d]", *ticketID))
	return fmt.Errorf("no purchased ticket %d", *ticketID)
}
