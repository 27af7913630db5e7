package rmi401k

// Portal URLs
const (
	LoginURL        = "https://www.retirementlogin.net/rmi401k/default.aspx"
	TransactionsURL = "https://www.retirementlogin.net/rmi401k/transhist.aspx?RANDOMNUM=&LINK=51"
)

// CSS Selectors for the RMI 401k portal
const (
	// Login page
	SelectorUserInput     = "#ReliusUserID"
	SelectorPasswordInput = "#PASSWDTXT"
	SelectorLoginButton   = "#loginpage .submit button"

	// Login error, rendered on the login page itself
	SelectorLoginMessage = "#showmessagecommon"

	// Overview page
	SelectorBalance = ".balance"

	// Transaction history page
	SelectorFilterForm    = "#tranhistfundform"
	SelectorFromDateInput = "[name=FILTERDATE]"
	SelectorToDateInput   = "[name=TODATE]"
	SelectorReportButton  = "#tranhistfundform a.btn"

	// Each transaction is a row group holding nested tables. Only the first
	// header row and the first data row of a group describe the transaction.
	SelectorTransactionHistory = ".transaction-history"
	SelectorRowGroup           = ".transaction-history>.collapsable-content"
	SelectorHeaderRow          = "thead>tr"
	SelectorHeaderCell         = "th"
	SelectorDataRow            = "tbody>tr"
	SelectorDataCell           = "td"
)

// InvalidCredentialsMarker is the text the portal shows for a rejected login.
const InvalidCredentialsMarker = "Invalid userid/password"

// Site bundles every URL and selector the scraper depends on, so tests and
// mirrors of the portal can substitute their own.
type Site struct {
	LoginURL        string
	TransactionsURL string

	UserInput     string
	PasswordInput string
	LoginButton   string
	LoginMessage  string

	Balance string

	FilterForm    string
	FromDateInput string
	ToDateInput   string
	ReportButton  string

	TransactionHistory string
	RowGroup           string
	HeaderRow          string
	HeaderCell         string
	DataRow            string
	DataCell           string

	InvalidCredentialsMarker string
}

// DefaultSite returns the live portal contract.
func DefaultSite() Site {
	return Site{
		LoginURL:        LoginURL,
		TransactionsURL: TransactionsURL,

		UserInput:     SelectorUserInput,
		PasswordInput: SelectorPasswordInput,
		LoginButton:   SelectorLoginButton,
		LoginMessage:  SelectorLoginMessage,

		Balance: SelectorBalance,

		FilterForm:    SelectorFilterForm,
		FromDateInput: SelectorFromDateInput,
		ToDateInput:   SelectorToDateInput,
		ReportButton:  SelectorReportButton,

		TransactionHistory: SelectorTransactionHistory,
		RowGroup:           SelectorRowGroup,
		HeaderRow:          SelectorHeaderRow,
		HeaderCell:         SelectorHeaderCell,
		DataRow:            SelectorDataRow,
		DataCell:           SelectorDataCell,

		InvalidCredentialsMarker: InvalidCredentialsMarker,
	}
}
