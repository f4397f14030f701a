package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gosterim-cli/booking"
	"gosterim-cli/model"
	"gosterim-cli/service"
	"gosterim-cli/store"
	"gosterim-cli/ticket"
)

const (
	catalogTimeout = 30 * time.Second
	posterTimeout  = 5 * time.Second
	settleTimeout  = 2 * time.Minute
)

type appState int

const (
	stateLoadingCatalog appState = iota
	stateSelectFilm
	stateSelectShowtime
	stateSelectSeats
	statePayment
	stateTicket
	stateError
)

// Options wires the collaborators of the booking screens. Zero values fall
// back to the built-in catalog and the simulated processor; a nil Client
// disables poster probing.
type Options struct {
	Catalog   service.CatalogProvider
	Processor service.Processor
	Client    *service.Client
	TicketDir string
	Logger    *slog.Logger
	Random    func() float64
}

type appModel struct {
	catalog   service.CatalogProvider
	processor service.Processor
	client    *service.Client
	ticketDir string
	logger    *slog.Logger
	random    func() float64

	state     appState
	lastState appState
	err       error
	notice    string

	width  int
	height int

	selector booking.Selector
	session  booking.Session
	film     booking.Film
	poster   booking.PosterChain

	filmList     list.Model
	showtimeList list.Model

	seats           *booking.SeatMap
	cursorRow       int
	cursorCol       int
	showSeatNumbers bool

	form       cardForm
	preview    booking.Matrix
	paymentErr error
	exported   string

	spinner spinner.Model
}

type errMsg struct {
	err error
}

type catalogMsg struct {
	films []model.CatalogFilm
	err   error
}

type posterMsg struct {
	filmID int
	ref    string
	err    error
}

type paymentMsg struct {
	settlement model.Settlement
	err        error
}

type exportMsg struct {
	path string
	err  error
}

func New(opts Options) tea.Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = service.StaticCatalog{}
	}
	processor := opts.Processor
	if processor == nil {
		processor = service.NewSimulatedProcessor(service.DefaultPaymentDelay, logger)
	}
	random := opts.Random
	if random == nil {
		random = rand.Float64
	}

	m := appModel{
		catalog:   catalog,
		processor: processor,
		client:    opts.Client,
		ticketDir: opts.TicketDir,
		logger:    logger,
		random:    random,
		state:     stateLoadingCatalog,
		session:   booking.NewSession(),
	}
	m.filmList = newList("Now Showing")
	m.showtimeList = newList("Showtimes")
	m.form = newCardForm()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

// IssuedBooking returns the booking of a finished program when a ticket was
// issued.
func IssuedBooking(final tea.Model) (model.Booking, bool) {
	m, ok := final.(appModel)
	if !ok || m.session.Stage() != booking.StageTicketIssued {
		return model.Booking{}, false
	}
	return m.session.Booking(), true
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.loadCatalogCmd(), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.handleFilterInput(msg) {
			return m, nil
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.lastState = recoverStateFrom(m.state)
		m.state = stateError
		return m, nil

	case catalogMsg:
		if msg.err != nil {
			m.logger.Error("catalog load failed", "err", msg.err)
			return m, errCmd(msg.err)
		}
		m.selector = booking.NewSelector(msg.films, m.logger)
		if len(m.selector.Films()) == 0 {
			return m, errCmd(errors.New("the catalog has no bookable showtimes"))
		}
		m.filmList.SetItems(buildFilmItems(m.selector.Films()))
		m.state = stateSelectFilm
		return m, nil

	case posterMsg:
		return m.handlePoster(msg)

	case paymentMsg:
		return m.handlePayment(msg)

	case exportMsg:
		if msg.err != nil {
			m.notice = "Could not export ticket: " + msg.err.Error()
			return m, nil
		}
		m.exported = msg.path
		m.notice = "Ticket saved to " + msg.path
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateSelectFilm:
		m.filmList, cmd = m.filmList.Update(msg)
	case stateSelectShowtime:
		m.showtimeList, cmd = m.showtimeList.Update(msg)
	case statePayment:
		if !m.session.Processing() {
			m.form, cmd = m.form.update(msg)
		}
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	body := ""
	switch m.state {
	case stateLoadingCatalog:
		body = m.loadingView()
	case stateSelectFilm:
		body = m.filmList.View()
	case stateSelectShowtime:
		body = m.filmPanel() + "\n\n" + m.showtimeList.View()
	case stateSelectSeats:
		body = m.renderSeatMap()
	case statePayment:
		body = m.paymentView()
	case stateTicket:
		body = m.ticketView()
	case stateError:
		body = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error()) + "\n\n" + hint("Press r to retry, esc to go back or ctrl+c to quit.")
	}
	if m.notice != "" {
		body += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render(m.notice)
	}
	return header + "\n\n" + body
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Gosterim")
	sub := []string{}
	current := m.session.Booking()
	if current.Movie != nil {
		sub = append(sub, current.Movie.Title, ticket.DisplayTime(current.Movie.SessionTime))
	} else if m.state == stateSelectShowtime && m.film.Title != "" {
		sub = append(sub, m.film.Title)
	}
	if m.state == stateSelectSeats && m.seats != nil {
		if selected := m.seats.Selection(); len(selected) > 0 {
			sub = append(sub, fmt.Sprintf("%d seats", len(selected)), formatPrice(m.seats.Total()))
		}
	}
	if len(current.Seats) > 0 {
		sub = append(sub, strings.Join(current.SeatIds(), ", "), formatPrice(current.TotalPrice))
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + lipgloss.NewStyle().Faint(true).Render(meta)
	}

	hints := "ctrl+c quit • esc back • type to filter • enter select"
	switch m.state {
	case stateSelectSeats:
		hints = "ctrl+c quit • esc back • arrows/hjkl move • space toggle seat • r recommended • # seat numbers • enter continue"
	case statePayment:
		hints = "ctrl+c quit • esc back • tab next field • enter pay"
		if m.session.Processing() {
			hints = "ctrl+c quit • processing payment"
		}
	case stateTicket:
		hints = "ctrl+c/q quit • p save ticket image • n new booking"
	case stateError, stateLoadingCatalog:
		hints = "ctrl+c quit"
	}
	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	return title + meta + filterLine + "\n" + hint(hints)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit, true
	}
	if m.state == statePayment && m.session.Processing() {
		return m, nil, true
	}
	m.notice = ""

	switch key {
	case "q":
		if m.state != statePayment {
			return m, tea.Quit, true
		}
	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		next, cmd := m.goBack()
		return next, cmd, true
	case "tab", "shift+tab":
		if m.state == statePayment {
			delta := 1
			if key == "shift+tab" {
				delta = -1
			}
			cmd := m.form.focusNext(delta)
			return m, cmd, true
		}
	case "r":
		if m.state == stateSelectSeats {
			m.seats.ApplyRecommended(!m.seats.RecommendedActive())
			return m, nil, true
		}
		if m.state == stateError {
			m.state = stateLoadingCatalog
			return m, tea.Batch(m.loadCatalogCmd(), m.spinner.Tick), true
		}
	case " ", "x":
		if m.state == stateSelectSeats {
			m.seats.Toggle(m.cursorSeatID())
			return m, nil, true
		}
	case "#":
		if m.state == stateSelectSeats {
			m.showSeatNumbers = !m.showSeatNumbers
			return m, nil, true
		}
	case "up", "k", "down", "j", "left", "h", "right", "l":
		if m.state == stateSelectSeats {
			m.moveCursor(key)
			return m, nil, true
		}
	case "p":
		if m.state == stateTicket {
			return m, m.exportCmd(), true
		}
	case "n":
		if m.state == stateTicket {
			return m.newBooking()
		}
	}

	if msg.Type == tea.KeyEnter {
		switch m.state {
		case stateSelectFilm:
			item, ok := m.filmList.SelectedItem().(filmItem)
			if !ok {
				return m, nil, true
			}
			m.film = item.film
			m.poster = booking.NewPosterChain(item.primary, item.film.Secondary)
			m.showtimeList.Title = fmt.Sprintf("Showtimes • %s", item.film.Title)
			m.showtimeList.ResetFilter()
			m.showtimeList.SetItems(buildShowtimeItems(item.film.Showtimes))
			m.showtimeList.Select(0)
			m.state = stateSelectShowtime
			return m, m.probePosterCmd(m.film.Id, m.poster.Current()), true
		case stateSelectShowtime:
			item, ok := m.showtimeList.SelectedItem().(showtimeItem)
			if !ok {
				return m, nil, true
			}
			return m.openSeatMap(item.showtime)
		case stateSelectSeats:
			return m.commitSeats()
		case statePayment:
			return m.startPayment()
		}
	}
	return m, nil, false
}

func (m appModel) openSeatMap(choice model.Showtime) (tea.Model, tea.Cmd, bool) {
	showtime, err := m.selector.Select(choice.FilmId, choice.SessionId)
	if err != nil {
		return m.refuse(err)
	}
	if m.poster.Current() != "" {
		showtime.Poster = m.poster.Current()
	}
	next, err := m.session.SelectShowtime(showtime)
	if err != nil {
		return m.refuse(err)
	}
	m.session = next
	m.seats = booking.NewSeatMap(booking.DefaultLayout, showtime.Price)
	m.cursorRow, m.cursorCol = 0, 0
	m.state = stateSelectSeats
	m.logger.Debug("showtime selected", "film", showtime.Title, "session_id", showtime.SessionId)
	return m, nil, true
}

func (m appModel) commitSeats() (tea.Model, tea.Cmd, bool) {
	seats, total, err := m.seats.Commit()
	if err != nil {
		return m.refuse(err)
	}
	next, err := m.session.CommitSeats(seats, total)
	if err != nil {
		return m.refuse(err)
	}
	m.session = next
	m.form = newCardForm()
	m.preview = booking.Preview(m.random)
	m.paymentErr = nil
	m.state = statePayment
	cmd := m.form.focus(0)
	return m, cmd, true
}

func (m appModel) startPayment() (tea.Model, tea.Cmd, bool) {
	details := m.form.details()
	if err := service.ValidateCard(details); err != nil {
		m.paymentErr = err
		return m, nil, true
	}
	next, err := m.session.BeginPayment()
	if err != nil {
		return m.refuse(err)
	}
	m.session = next
	m.paymentErr = nil
	m.preview = booking.Preview(m.random)
	charge := service.Charge{Total: next.Booking().TotalPrice, Card: details}
	return m, tea.Batch(m.settleCmd(charge), m.spinner.Tick), true
}

func (m appModel) handlePayment(msg paymentMsg) (tea.Model, tea.Cmd) {
	if m.state != statePayment || !m.session.Processing() {
		return m, nil
	}
	if msg.err != nil {
		next, failure := m.session.FailPayment(msg.err)
		m.session = next
		m.paymentErr = failure
		m.logger.Warn("payment failed", "err", msg.err)
		return m, nil
	}
	next, err := m.session.CompletePayment(msg.settlement)
	if err != nil {
		failed, failure := m.session.FailPayment(err)
		m.session = failed
		m.paymentErr = failure
		m.logger.Error("settlement rejected", "err", err)
		return m, nil
	}
	m.session = next
	m.state = stateTicket
	m.exported = ""
	if recent, err := ticket.Recent(next.Booking()); err == nil {
		if err := store.RememberTicket(recent); err != nil {
			m.logger.Warn("remember ticket", "err", err)
		}
	}
	return m, nil
}

func (m appModel) handlePoster(msg posterMsg) (tea.Model, tea.Cmd) {
	if msg.filmID != m.film.Id || msg.ref != m.poster.Current() || msg.err == nil {
		return m, nil
	}
	m.logger.Debug("poster unavailable", "film", m.film.Title, "poster", msg.ref, "err", msg.err)
	next, ok := m.poster.Fail()
	m.poster = next
	if !ok {
		return m, nil
	}
	return m, m.probePosterCmd(m.film.Id, next.Current())
}

func (m appModel) newBooking() (tea.Model, tea.Cmd, bool) {
	next, err := m.session.Reset()
	if err != nil {
		return m.refuse(err)
	}
	m.session = next
	m.seats = nil
	m.form = newCardForm()
	m.paymentErr = nil
	m.exported = ""
	m.film = booking.Film{}
	m.filmList.ResetFilter()
	m.state = stateSelectFilm
	return m, nil, true
}

func (m appModel) goBack() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateSelectShowtime:
		m.state = stateSelectFilm
	case stateSelectSeats:
		next, err := m.session.Back()
		if err != nil {
			refused, cmd, _ := m.refuse(err)
			return refused, cmd
		}
		m.session = next
		m.seats = nil
		m.state = stateSelectShowtime
	case statePayment:
		next, err := m.session.Back()
		if err != nil {
			refused, cmd, _ := m.refuse(err)
			return refused, cmd
		}
		m.session = next
		m.paymentErr = nil
		if movie := next.Booking().Movie; movie != nil {
			m.seats = booking.NewSeatMap(booking.DefaultLayout, movie.Price)
		}
		m.cursorRow, m.cursorCol = 0, 0
		m.state = stateSelectSeats
	case stateError:
		m.state = m.lastState
		if m.state == stateLoadingCatalog {
			return m, tea.Batch(m.loadCatalogCmd(), m.spinner.Tick)
		}
	default:
		return m, nil
	}
	return m, nil
}

// refuse keeps the current screen and reports why the action was rejected.
func (m appModel) refuse(err error) (tea.Model, tea.Cmd, bool) {
	m.logger.Warn("action refused", "state", m.state, "stage", m.session.Stage().String(), "err", err)
	m.notice = err.Error()
	return m, nil, true
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.appendFilter(listPtr, string(msg.Runes))
		return true
	case tea.KeySpace:
		m.appendFilter(listPtr, " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.popFilter(listPtr)
		return true
	default:
		return false
	}
}

func (m *appModel) appendFilter(listPtr *list.Model, value string) {
	if value == "" {
		return
	}
	current := listPtr.FilterValue()
	listPtr.SetFilterText(current + value)
}

func (m *appModel) popFilter(listPtr *list.Model) {
	value := listPtr.FilterValue()
	if value == "" {
		return
	}
	value = trimLastRune(value)
	if value == "" {
		listPtr.ResetFilter()
		return
	}
	listPtr.SetFilterText(value)
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func (m *appModel) activeList() *list.Model {
	switch m.state {
	case stateSelectFilm:
		return &m.filmList
	case stateSelectShowtime:
		return &m.showtimeList
	default:
		return nil
	}
}

func (m appModel) isLoadingState() bool {
	return m.state == stateLoadingCatalog || (m.state == statePayment && m.session.Processing())
}

func (m appModel) loadingView() string {
	return fmt.Sprintf("%s Loading catalog\n\n%s", m.spinner.View(), hint("Fetching films and showtimes..."))
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.filmList.SetSize(m.width, h)
	m.showtimeList.SetSize(m.width, h-6)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err}
	}
}

func recoverStateFrom(state appState) appState {
	switch state {
	case stateLoadingCatalog, stateError:
		return stateLoadingCatalog
	default:
		return state
	}
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

func (m appModel) loadCatalogCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
		defer cancel()
		films, err := m.catalog.Films(ctx)
		return catalogMsg{films: films, err: err}
	}
}

func (m appModel) probePosterCmd(filmID int, ref string) tea.Cmd {
	if m.client == nil || ref == "" {
		return nil
	}
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), posterTimeout)
		defer cancel()
		return posterMsg{filmID: filmID, ref: ref, err: client.ProbePoster(ctx, ref)}
	}
}

func (m appModel) settleCmd(charge service.Charge) tea.Cmd {
	processor := m.processor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
		defer cancel()
		settlement, err := processor.Settle(ctx, charge)
		return paymentMsg{settlement: settlement, err: err}
	}
}

func (m appModel) exportCmd() tea.Cmd {
	issued := m.session.Booking()
	dir := m.ticketDir
	return func() tea.Msg {
		data, err := ticket.FromBooking(issued)
		if err != nil {
			return exportMsg{err: err}
		}
		path, err := ticket.WritePNG(dir, data)
		return exportMsg{path: path, err: err}
	}
}

type filmItem struct {
	film    booking.Film
	primary string
}

func (f filmItem) Title() string {
	return f.film.Title
}

func (f filmItem) Description() string {
	parts := []string{}
	if f.film.Genre != "" {
		parts = append(parts, f.film.Genre)
	}
	if f.film.Rating != "" {
		parts = append(parts, f.film.Rating)
	}
	times := make([]string, 0, len(f.film.Showtimes))
	for _, showtime := range f.film.Showtimes {
		times = append(times, showtime.SessionTime)
	}
	parts = append(parts, strings.Join(times, " "))
	return strings.Join(parts, " • ")
}

func (f filmItem) FilterValue() string {
	return strings.ToLower(f.film.Title + " " + f.film.Genre)
}

type showtimeItem struct {
	showtime model.Showtime
}

func (s showtimeItem) Title() string {
	return s.showtime.SessionTime
}

func (s showtimeItem) Description() string {
	return fmt.Sprintf("%s • %s per seat", ticket.DisplayTime(s.showtime.SessionTime), formatPrice(s.showtime.Price))
}

func (s showtimeItem) FilterValue() string {
	return s.showtime.SessionTime
}

func buildFilmItems(films []booking.Film) []list.Item {
	items := make([]list.Item, 0, len(films))
	for _, film := range films {
		items = append(items, filmItem{film: film, primary: film.Poster})
	}
	return items
}

func buildShowtimeItems(showtimes []model.Showtime) []list.Item {
	items := make([]list.Item, 0, len(showtimes))
	for _, showtime := range showtimes {
		items = append(items, showtimeItem{showtime: showtime})
	}
	return items
}
