package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/grez-lucas/rmi401k-scraper/internal/scraper/account"
)

// Printer writes human readable, colored output.
type Printer struct {
	w io.Writer

	grey   *color.Color
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
}

// NewPrinter writes to w. Colors are off when noColor is set.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:      w,
		grey:   color.New(color.FgHiBlack),
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgCyan),
	}

	for _, c := range []*color.Color{p.grey, p.green, p.red, p.yellow, p.cyan} {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}

	return p
}

func (p *Printer) Banner(title string) {
	fmt.Fprintln(p.w, p.cyan.Sprint(Banner(title, 1)))
}

func (p *Printer) LoginRetry(err error) {
	fmt.Fprintln(p.w, p.red.Sprint(err.Error()+", please try again"))
}

func (p *Printer) LoggedIn() {
	fmt.Fprintln(p.w, p.cyan.Sprint("Logged in!"))
}

func (p *Printer) Balance(b account.Balance) {
	fmt.Fprintln(p.w, "Balance is:", p.green.Sprint(b.Amount))
}

// Transactions prints one line per record with the amounts right-aligned.
func (p *Printer) Transactions(records []account.TransactionRecord) {
	width := dollarsWidth(records) + 1

	fmt.Fprintln(p.w, "Recent Transactions:")
	for _, r := range records {
		dollars := r.Value(account.FieldDollars)
		status := r.Value(account.FieldStatus)

		amountColor := p.green
		if !IsPositive(dollars) {
			amountColor = p.red
		}
		statusColor := p.yellow
		if IsSettled(status) {
			statusColor = p.grey
		}

		fmt.Fprintln(p.w,
			p.grey.Sprint("  "+r.Value(account.FieldDate))+
				amountColor.Sprint(padStart(dollars, width))+
				statusColor.Sprint(" ("+status+")")+
				p.grey.Sprint(" "+NormalizeDetails(r.Value(account.FieldDetails))),
		)
	}
}
