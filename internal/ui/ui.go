package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvx/internal/cache"
	"github.com/desertthunder/tvx/internal/models"
	"github.com/desertthunder/tvx/internal/session"
	"github.com/desertthunder/tvx/internal/shared"
	"github.com/desertthunder/tvx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CheckingView ViewState = iota
	LoginView
	ShowsView
	SearchView
)

func (v ViewState) String() string {
	switch v {
	case CheckingView:
		return "checking"
	case LoginView:
		return "login"
	case ShowsView:
		return "shows"
	case SearchView:
		return "search"
	default:
		return ""
	}
}

// Options holds the collaborators of a [Model].
type Options struct {
	Auth           *tasks.AuthFlow
	Shows          *cache.ShowCache
	Flow           *tasks.AddShowFlow
	Notices        *tasks.ChannelNotifier
	Logger         *log.Logger
	RefetchOnFocus bool
	OpenURL        func(string) error // defaults to [shared.OpenBrowser]
}

// Model represents the TUI application state.
type Model struct {
	ctx            context.Context
	view           ViewState
	auth           *tasks.AuthFlow
	shows          *cache.ShowCache
	flow           *tasks.AddShowFlow
	notices        *tasks.ChannelNotifier
	logger         *log.Logger
	refetchOnFocus bool
	openURL        func(string) error

	env      string
	state    session.State
	checkErr error
	width    int
	height   int

	spinner   spinner.Model
	email     textinput.Model
	password  textinput.Model
	loggingIn bool
	loginErr  error

	showList     list.Model
	snapshot     cache.Snapshot
	fetchStarted bool

	searchInput    textinput.Model
	searchSeq      uint64
	results        []models.ShowSearchResult
	cursor         int
	resultsFocus   bool
	searching      bool
	searchErr      error
	lastSearchTerm string

	sessionCh <-chan session.State
	notice    *tasks.Notice
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = shared.OpenBrowser
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.selected

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:    "
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	search := textinput.New()
	search.Placeholder = "Search TVmaze"
	search.Prompt = "🔍 "

	shows := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	shows.Title = "Your shows"
	shows.SetFilteringEnabled(false)
	shows.SetShowHelp(false)
	shows.KeyMap.Quit.SetEnabled(false)
	shows.KeyMap.ForceQuit.SetEnabled(false)

	return &Model{
		ctx:            ctx,
		view:           CheckingView,
		auth:           opts.Auth,
		shows:          opts.Shows,
		flow:           opts.Flow,
		notices:        opts.Notices,
		logger:         logger.With("ui", "tui"),
		refetchOnFocus: opts.RefetchOnFocus,
		openURL:        openURL,
		spinner:        sp,
		email:          email,
		password:       password,
		searchInput:    search,
		showList:       shows,
		help:           help.New(),
		keys:           newKeyMap(),
	}
}

// Run starts the TUI and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Init bootstraps the session and starts listening for session, cache and notice updates.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.bootstrap(),
		m.waitForSession(m.auth.Session().Subscribe()),
		m.waitForShows(),
		m.waitForNotice(),
	)
}

// ViewState returns the active view.
func (m *Model) ViewState() ViewState { return m.view }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showList.SetSize(max(msg.Width-4, 20), max(msg.Height-14, 5))
		return m, nil

	case tea.FocusMsg:
		if m.refetchOnFocus && m.state.Authenticated() {
			return m, m.refetch()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case CheckingView:
			return m.handleCheckingKeys(msg)
		case LoginView:
			return m.handleLoginKeys(msg)
		case ShowsView:
			return m.handleShowsKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgBootstrapped:
		data := msg.data.(bootstrapped)
		m.env = data.env
		if data.state.Status == models.StatusUnknown {
			m.checkErr = data.err
		}
		return m, m.applySession(data.state)

	case MsgSessionChanged:
		state := msg.data.(session.State)
		return m, tea.Batch(m.applySession(state), m.waitForSession(nil))

	case MsgLoginDone:
		data := msg.data.(struct {
			user *models.User
			err  error
		})
		m.loggingIn = false
		if data.err != nil {
			m.loginErr = data.err
			m.password.Reset()
			return m, nil
		}
		m.loginErr = nil
		m.email.Reset()
		m.password.Reset()
		return m, m.applySession(m.auth.Session().State())

	case MsgLogoutDone:
		if err, _ := msg.data.(error); err != nil {
			return m, nil
		}
		return m, m.applySession(m.auth.Session().State())

	case MsgShowsUpdated:
		m.snapshot = m.shows.Snapshot()
		cmd := m.showList.SetItems(showItems(m.snapshot.Shows))
		return m, tea.Batch(cmd, m.waitForShows())

	case MsgSearchDone:
		data := msg.data.(searchDone)
		if data.seq != m.searchSeq || m.view != SearchView {
			m.logger.Debug("dropping search result for closed surface", "term", data.term)
			return m, nil
		}
		if data.term != m.lastSearchTerm {
			return m, nil
		}
		m.searching = false
		if data.err != nil {
			m.searchErr = data.err
			m.auth.Expire(data.err)
			return m, nil
		}
		m.searchErr = nil
		m.results = data.results
		m.cursor = 0
		if len(m.results) > 0 {
			m.resultsFocus = true
			m.searchInput.Blur()
		}
		return m, nil

	case MsgAddDone:
		data := msg.data.(addDone)
		if data.err != nil {
			m.auth.Expire(data.err)
			return m, nil
		}
		if data.seq == m.searchSeq && m.view == SearchView && !m.flow.Snapshot().Open {
			m.closeSearch()
		}
		return m, nil

	case MsgNotice:
		n := msg.data.(tasks.Notice)
		m.notice = &n
		return m, m.waitForNotice()
	}
	return m, nil
}

// applySession moves to the view belonging to state.
//
// An unknown status never redirects: the checking view stays up until the
// status is known or the user asks for the login form.
func (m *Model) applySession(state session.State) tea.Cmd {
	m.state = state
	return session.Match(state,
		func() tea.Cmd {
			if m.view != LoginView {
				m.view = CheckingView
			}
			return nil
		},
		func() tea.Cmd {
			if m.view == SearchView {
				m.closeSearch()
			}
			m.view = LoginView
			m.fetchStarted = false
			m.snapshot = cache.Snapshot{}
			m.showList.SetItems(nil)
			return m.focusLogin(false)
		},
		func(user models.User) tea.Cmd {
			m.checkErr = nil
			if m.view != SearchView {
				m.view = ShowsView
			}
			if m.fetchStarted {
				return nil
			}
			m.fetchStarted = true
			return m.fetch()
		},
	)
}

func (m *Model) handleCheckingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.login) && m.checkErr != nil:
		m.view = LoginView
		return m, m.focusLogin(false)
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.interrupt):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		return m, m.focusLogin(m.email.Focused())
	case key.Matches(msg, m.keys.enter):
		if m.email.Focused() {
			return m, m.focusLogin(true)
		}
		return m, m.submitLogin()
	}

	var cmd tea.Cmd
	if m.email.Focused() {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusLogin(password bool) tea.Cmd {
	if password {
		m.email.Blur()
		return m.password.Focus()
	}
	m.password.Blur()
	return m.email.Focus()
}

func (m *Model) handleShowsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.add):
		return m, m.openSearch()
	case key.Matches(msg, m.keys.refresh):
		return m, m.refetch()
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	case key.Matches(msg, m.keys.open):
		if item, ok := m.showList.SelectedItem().(showItem); ok {
			if err := m.openURL(item.show.TVMazeURL()); err != nil {
				m.logger.Warn("could not open browser", "err", err)
				m.notice = &tasks.Notice{Level: tasks.LevelWarning, Message: "Couldn't open a browser", Err: err}
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.showList, cmd = m.showList.Update(msg)
	return m, cmd
}

func (m *Model) openSearch() tea.Cmd {
	m.searchSeq = m.flow.Open()
	m.view = SearchView
	m.results = nil
	m.cursor = 0
	m.resultsFocus = false
	m.searching = false
	m.searchErr = nil
	m.lastSearchTerm = ""
	m.searchInput.Reset()
	return m.searchInput.Focus()
}

func (m *Model) closeSearch() {
	m.flow.Close()
	m.view = ShowsView
	m.results = nil
	m.resultsFocus = false
	m.searching = false
	m.searchErr = nil
	m.lastSearchTerm = ""
	m.searchInput.Reset()
	m.searchInput.Blur()
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.interrupt):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.closeSearch()
		return m, nil
	case key.Matches(msg, m.keys.tab):
		if len(m.results) == 0 {
			return m, nil
		}
		m.resultsFocus = !m.resultsFocus
		if m.resultsFocus {
			m.searchInput.Blur()
			return m, nil
		}
		return m, m.searchInput.Focus()
	}

	if !m.resultsFocus {
		if key.Matches(msg, m.keys.enter) {
			return m, m.search()
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.enter):
		return m, m.selectResult()
	}
	return m, nil
}

// selectResult starts adding the highlighted result. Tracked results and
// selections while an add is running do nothing.
func (m *Model) selectResult() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return nil
	}
	r := m.results[m.cursor]
	if m.flow.Tracked(r.TVMazeID) {
		return nil
	}
	if m.flow.Snapshot().State == tasks.FlowAdding {
		return nil
	}

	ctx, flow, seq := m.ctx, m.flow, m.searchSeq
	return func() tea.Msg {
		show, err := flow.Select(ctx, r.TVMazeID)
		return addDoneMsg(seq, show, err)
	}
}

func (m *Model) search() tea.Cmd {
	term := strings.TrimSpace(m.searchInput.Value())
	if term == "" {
		return nil
	}
	m.searching = true
	m.lastSearchTerm = term

	ctx, flow, seq := m.ctx, m.flow, m.searchSeq
	return func() tea.Msg {
		results, err := flow.Search(ctx, term)
		return searchDoneMsg(seq, term, results, err)
	}
}

func (m *Model) submitLogin() tea.Cmd {
	if m.loggingIn {
		return nil
	}
	email, password := m.email.Value(), m.password.Value()
	if strings.TrimSpace(email) == "" || password == "" {
		m.loginErr = shared.ErrMissingCredentials
		return nil
	}
	m.loggingIn = true
	m.loginErr = nil

	ctx, auth := m.ctx, m.auth
	return func() tea.Msg {
		user, err := auth.Login(ctx, email, password)
		return loginDoneMsg(user, err)
	}
}

func (m *Model) logout() tea.Cmd {
	ctx, auth := m.ctx, m.auth
	return func() tea.Msg {
		return logoutDoneMsg(auth.Logout(ctx))
	}
}

func (m *Model) bootstrap() tea.Cmd {
	ctx, auth := m.ctx, m.auth
	return func() tea.Msg {
		env, state, err := auth.Bootstrap(ctx)
		return bootstrappedMsg(env, state, err)
	}
}

func (m *Model) fetch() tea.Cmd {
	return m.load(m.shows.Fetch)
}

func (m *Model) refetch() tea.Cmd {
	return m.load(m.shows.Refetch)
}

// load runs a cache fetch. The result reaches the view through the cache's
// update signal; failures are reported as notices.
func (m *Model) load(fn func(context.Context) ([]models.Show, error)) tea.Cmd {
	ctx, auth, notices, logger := m.ctx, m.auth, m.notices, m.logger
	return func() tea.Msg {
		if _, err := fn(ctx); err != nil {
			if auth.Expire(err) {
				return nil
			}
			logger.Warn("loading shows failed", "err", err)
			if notices != nil {
				notices.Notify(tasks.FetchFailedNotice(err))
			}
		}
		return nil
	}
}

// waitForSession delivers the next session transition. A nil channel reuses
// the one from the previous call.
func (m *Model) waitForSession(ch <-chan session.State) tea.Cmd {
	if ch != nil {
		m.sessionCh = ch
	}
	ch, ctx := m.sessionCh, m.ctx
	return func() tea.Msg {
		select {
		case state := <-ch:
			return sessionChangedMsg(state)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForShows() tea.Cmd {
	updates, ctx := m.shows.Updates(), m.ctx
	return func() tea.Msg {
		select {
		case <-updates:
			return showsUpdatedMsg()
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForNotice() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	ch, ctx := m.notices.C(), m.ctx
	return func() tea.Msg {
		select {
		case n := <-ch:
			return noticeMsg(n)
		case <-ctx.Done():
			return nil
		}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case CheckingView:
		body = m.renderChecking()
	case LoginView:
		body = m.renderLogin()
	case ShowsView:
		body = m.renderShows()
	case SearchView:
		body = m.renderSearch()
	}

	parts := []string{m.renderHeader(), body}
	if m.notice != nil {
		parts = append(parts, styles.Notice(*m.notice))
	}
	parts = append(parts, m.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderHeader() string {
	title := "tvx"
	if m.env != "" {
		title = fmt.Sprintf("tvx · %s", m.env)
	}
	if m.state.User != nil {
		title = fmt.Sprintf("%s · %s", title, m.state.User.Email)
	}
	return styles.title.Render(title)
}

func (m *Model) renderChecking() string {
	if m.checkErr == nil {
		return fmt.Sprintf("%s Checking your session…\n", m.spinner.View())
	}
	return fmt.Sprintf(
		"%s Still checking your session…\n\n%s\n",
		m.spinner.View(),
		styles.warn.Render(fmt.Sprintf("The server couldn't be reached: %v", m.checkErr)),
	)
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString("Log in to continue\n\n")
	b.WriteString(m.email.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	switch {
	case m.loggingIn:
		b.WriteString(fmt.Sprintf("%s Logging in…\n", m.spinner.View()))
	case errors.Is(m.loginErr, shared.ErrMissingCredentials):
		b.WriteString(styles.err.Render("Email and password are required") + "\n")
	case errors.Is(m.loginErr, shared.ErrAuthFailed):
		b.WriteString(styles.err.Render("Incorrect email or password") + "\n")
	case m.loginErr != nil:
		b.WriteString(styles.err.Render("Login failed; try again") + "\n")
	}
	return b.String()
}

func (m *Model) renderShows() string {
	snap := m.snapshot
	switch {
	case !snap.HasData && snap.Err != nil:
		return styles.err.Render("Your shows couldn't be loaded.") + "\n" + styles.help.Render("Press r to retry") + "\n"
	case !snap.HasData:
		return fmt.Sprintf("%s Loading your shows…\n", m.spinner.View())
	case len(snap.Shows) == 0:
		return "You aren't tracking any shows yet.\n" + styles.help.Render("Press a to add one") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.showList.View())
	if item, ok := m.showList.SelectedItem().(showItem); ok {
		b.WriteString("\n\n")
		b.WriteString(styles.box.Render(seasonsView(item.show)))
	}
	if snap.Err != nil {
		b.WriteString("\n" + styles.warn.Render("Showing saved data; refresh failed. Press r to retry"))
	} else if snap.Fetching {
		b.WriteString("\n" + styles.muted.Render("Refreshing…"))
	}
	return b.String()
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(styles.selected.Render("Add a show") + "\n\n")
	b.WriteString(m.searchInput.View() + "\n\n")

	switch {
	case m.searching:
		b.WriteString(fmt.Sprintf("%s Searching…\n", m.spinner.View()))
	case m.searchErr != nil:
		b.WriteString(styles.err.Render("Search failed; try again") + "\n")
	case m.lastSearchTerm != "" && len(m.results) == 0:
		b.WriteString(styles.muted.Render("No matches") + "\n")
	}

	snap := m.flow.Snapshot()
	for i, r := range m.results {
		adding := snap.State == tasks.FlowAdding && snap.Adding == r.TVMazeID
		b.WriteString(resultLine(r, m.resultsFocus && i == m.cursor, m.flow.Tracked(r.TVMazeID), adding))
		b.WriteString("\n")
	}
	if snap.State == tasks.FlowAddFailed {
		b.WriteString("\n" + styles.err.Render("The show couldn't be added; select it again to retry") + "\n")
	}
	return b.String()
}

func (m *Model) renderHelp() string {
	var keys []key.Binding
	switch m.view {
	case CheckingView:
		if m.checkErr != nil {
			keys = append(keys, m.keys.login)
		}
		keys = append(keys, m.keys.quit)
	case LoginView:
		keys = []key.Binding{m.keys.tab, m.keys.enter, m.keys.interrupt}
	case ShowsView:
		keys = []key.Binding{m.keys.up, m.keys.down, m.keys.add, m.keys.refresh, m.keys.open, m.keys.logout, m.keys.quit}
	case SearchView:
		keys = []key.Binding{m.keys.enter, m.keys.tab, m.keys.back, m.keys.interrupt}
	}
	return "\n" + m.help.ShortHelpView(keys)
}
