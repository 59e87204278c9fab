package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/bookbot/goclob/clob/client"
	"github.com/bookbot/goclob/clob/types"
	"github.com/bookbot/goclob/internal/book"
	"github.com/bookbot/goclob/internal/journal"
	"github.com/bookbot/goclob/internal/notify"
	"github.com/bookbot/goclob/internal/watch"
	"github.com/bookbot/goclob/pkg/cache"
	"github.com/bookbot/goclob/pkg/config"
	"github.com/bookbot/goclob/pkg/logger"
	"github.com/bookbot/goclob/pkg/persistence"
)

var (
	// 样式定义
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	askStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")) // 红色

	bidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")) // 绿色

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	spreadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("238"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	noticeStyles = map[notify.Level]lipgloss.Style{
		notify.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		notify.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		notify.LevelWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		notify.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// uiMode 界面模式
type uiMode int

const (
	modeBook   uiMode = iota // 浏览订单簿
	modeOrder                // 下单表单
	modeCancel               // 撤单输入
	modeStatus               // 订单状态查询
)

// formField 下单表单的焦点字段
type formField int

const (
	fieldPrice formField = iota
	fieldQuantity
)

// ladderRow 阶梯视图中一个可选中的档位
type ladderRow struct {
	key   book.LevelKey
	level book.PriceLevel
}

// model 应用状态
type model struct {
	cfg     *config.Config
	clob    *client.Client
	trigger *watch.Trigger
	poller  *watch.Poller
	journal *journal.Journal

	// 订单状态查询结果缓存（避免反复敲同一个单号时刷接口）
	statusCache *cache.InMemoryCache[uint64, *types.OrderStatusResponse]

	ctx    context.Context
	cancel context.CancelFunc

	// 最近一次成功的快照及其派生视图
	snap      *types.OrderBookSnapshot
	fetchedAt time.Time
	buys      []book.PriceLevel
	sells     []book.PriceLevel
	summary   book.Summary
	trades    []types.Transaction

	expansion book.Expansion
	cursor    int // 在 rows 中的下标

	mode      uiMode
	side      types.Side
	price     string
	quantity  string
	focus     formField
	cancelID  string
	statusID  string
	status    *types.OrderStatusResponse
	statusErr string

	showJournal bool

	notice    notify.Notice
	noticeSeq int // 递增序号，过期消息只清除自己那一条
}

// tickMsg 定时重绘消息
type tickMsg time.Time

// snapshotMsg 新快照到达
type snapshotMsg watch.Snapshot

// orderCreatedMsg 下单成功
type orderCreatedMsg struct {
	req  types.CreateOrderRequest
	resp *types.CreateOrderResponse
}

// orderFailedMsg 下单失败（含本地校验失败）
type orderFailedMsg struct{ err error }

// cancelDoneMsg 撤单成功
type cancelDoneMsg struct{ resp *types.CancelOrderResponse }

// cancelFailedMsg 撤单失败
type cancelFailedMsg struct{ err error }

// statusMsg 订单状态查询结果
type statusMsg struct{ resp *types.OrderStatusResponse }

// statusFailedMsg 订单状态查询失败
type statusFailedMsg struct{ err error }

// clearNoticeMsg 通知到期
type clearNoticeMsg struct{ seq int }

func initialModel(cfg *config.Config, clob *client.Client, jnl *journal.Journal) model {
	ctx, cancel := context.WithCancel(context.Background())
	trigger := watch.NewTrigger()
	poller := watch.NewPoller(clob, cfg.PollInterval(), trigger)

	return model{
		cfg:         cfg,
		clob:        clob,
		trigger:     trigger,
		poller:      poller,
		journal:     jnl,
		statusCache: cache.NewInMemoryCache[uint64, *types.OrderStatusResponse](2 * time.Second),
		ctx:         ctx,
		cancel:      cancel,
		expansion:   book.NewExpansion(),
		side:        types.SideBuy,
	}
}

func (m model) Init() tea.Cmd {
	go m.poller.Run(m.ctx)
	return tea.Batch(
		tickCmd(),
		waitSnapshotCmd(m.poller),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m, tickCmd()

	case snapshotMsg:
		// 整体替换：快照要么完整应用，要么保持旧视图，不存在半更新
		m.snap = msg.Book
		m.fetchedAt = msg.FetchedAt
		m.buys, m.sells, m.summary = book.Ladder(msg.Book)
		m.trades = book.RecentTrades(msg.Book, m.cfg.Poll.TradeLimit)
		m.clampCursor()
		return m, waitSnapshotCmd(m.poller)

	case orderCreatedMsg:
		// 成功提交：清空输入、通知、刷新一次（恰好一次）
		m.price = ""
		m.quantity = ""
		m.focus = fieldPrice
		m.mode = modeBook
		m.trigger.Bump()
		m.journal.Record(journal.Entry{
			OrderID:   msg.resp.OrderID,
			Side:      msg.req.Side(),
			Price:     msg.req.Price,
			Quantity:  msg.req.Quantity,
			Filled:    msg.resp.FilledQuantity,
			Remaining: msg.resp.RemainingQuantity,
			CreatedAt: time.Now(),
		})
		return m.setNotice(notify.ForCreateResult(msg.req, msg.resp))

	case orderFailedMsg:
		return m.setNotice(notify.ForError(msg.err))

	case cancelDoneMsg:
		m.cancelID = ""
		m.mode = modeBook
		m.trigger.Bump()
		m.journal.MarkCancelled(msg.resp.OrderID)
		return m.setNotice(notify.ForCancelResult(msg.resp))

	case cancelFailedMsg:
		return m.setNotice(notify.ForError(msg.err))

	case statusMsg:
		m.status = msg.resp
		m.statusErr = ""
		return m, nil

	case statusFailedMsg:
		m.status = nil
		m.statusErr = msg.err.Error()
		return m, nil

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = notify.Notice{}
		}
		return m, nil
	}

	return m, nil
}

// setNotice 设置通知并安排到期清除
func (m model) setNotice(n notify.Notice) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = n
	seq := m.noticeSeq
	return m, tea.Tick(n.TTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// 全局按键
	switch key {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit
	}

	switch m.mode {
	case modeBook:
		return m.handleBookKey(key)
	case modeOrder:
		return m.handleOrderKey(key)
	case modeCancel:
		return m.handleCancelKey(key)
	case modeStatus:
		return m.handleStatusKey(key)
	}
	return m, nil
}

func (m model) handleBookKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "o":
		m.mode = modeOrder
	case "c":
		m.mode = modeCancel
	case "i":
		m.mode = modeStatus
		m.status = nil
		m.statusErr = ""
	case "j":
		m.showJournal = !m.showJournal
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
	case "enter", " ":
		rows := m.rows()
		if m.cursor >= 0 && m.cursor < len(rows) {
			// 展开状态按值替换，旧集合不动
			m.expansion = m.expansion.Toggle(rows[m.cursor].key)
		}
	}
	return m, nil
}

func (m model) handleOrderKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = modeBook
		return m, nil
	case "left", "right":
		if m.side == types.SideBuy {
			m.side = types.SideSell
		} else {
			m.side = types.SideBuy
		}
		return m, nil
	case "tab":
		if m.focus == fieldPrice {
			m.focus = fieldQuantity
		} else {
			m.focus = fieldPrice
		}
		return m, nil
	case "backspace":
		field := m.focusedField()
		if len(*field) > 0 {
			*field = (*field)[:len(*field)-1]
		}
		return m, nil
	case "enter":
		return m, m.submitCmd()
	}

	// 只接受数字输入
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		field := m.focusedField()
		if len(*field) < 12 {
			*field += key
		}
	}
	return m, nil
}

func (m *model) focusedField() *string {
	if m.focus == fieldPrice {
		return &m.price
	}
	return &m.quantity
}

// submitCmd 构造下单命令
// 空字段按 0 解析，交给客户端的本地校验拒绝（不会发请求）
func (m model) submitCmd() tea.Cmd {
	price, _ := strconv.ParseInt(m.price, 10, 64)
	quantity, _ := strconv.ParseInt(m.quantity, 10, 64)
	req := types.CreateOrderRequest{
		BuyOrder: m.side == types.SideBuy,
		Price:    price,
		Quantity: quantity,
	}
	clob := m.clob
	ctx := m.ctx
	return func() tea.Msg {
		resp, err := clob.CreateOrder(ctx, req)
		if err != nil {
			logger.Warnf("下单失败: %v", err)
			return orderFailedMsg{err: err}
		}
		logger.Infof("下单成功: id=%d filled=%d/%d", resp.OrderID, resp.FilledQuantity, req.Quantity)
		return orderCreatedMsg{req: req, resp: resp}
	}
}

func (m model) handleCancelKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = modeBook
		return m, nil
	case "backspace":
		if len(m.cancelID) > 0 {
			m.cancelID = m.cancelID[:len(m.cancelID)-1]
		}
		return m, nil
	case "enter":
		id, err := strconv.ParseUint(m.cancelID, 10, 64)
		if err != nil {
			return m.setNotice(notify.ForError(fmt.Errorf("无效的订单号: %q", m.cancelID)))
		}
		clob := m.clob
		ctx := m.ctx
		return m, func() tea.Msg {
			resp, err := clob.CancelOrder(ctx, id)
			if err != nil {
				logger.Warnf("撤单失败: id=%d err=%v", id, err)
				return cancelFailedMsg{err: err}
			}
			logger.Infof("撤单成功: id=%d", id)
			return cancelDoneMsg{resp: resp}
		}
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' && len(m.cancelID) < 20 {
		m.cancelID += key
	}
	return m, nil
}

func (m model) handleStatusKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = modeBook
		return m, nil
	case "backspace":
		if len(m.statusID) > 0 {
			m.statusID = m.statusID[:len(m.statusID)-1]
		}
		return m, nil
	case "enter":
		id, err := strconv.ParseUint(m.statusID, 10, 64)
		if err != nil {
			return m.setNotice(notify.ForError(fmt.Errorf("无效的订单号: %q", m.statusID)))
		}
		return m, m.statusCmd(id)
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' && len(m.statusID) < 20 {
		m.statusID += key
	}
	return m, nil
}

// statusCmd 查询订单状态，短时间内重复查询同一单号走缓存
func (m model) statusCmd(id uint64) tea.Cmd {
	clob := m.clob
	ctx := m.ctx
	statusCache := m.statusCache
	return func() tea.Msg {
		if cached, ok := statusCache.Get(id); ok {
			return statusMsg{resp: cached}
		}
		resp, err := clob.GetOrderStatus(ctx, id)
		if err != nil {
			logger.Warnf("查询订单状态失败: id=%d err=%v", id, err)
			return statusFailedMsg{err: err}
		}
		statusCache.Set(id, resp, 0)
		return statusMsg{resp: resp}
	}
}

func (m *model) clampCursor() {
	rows := m.rows()
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// rows 当前阶梯中可选中的档位（先卖后买，与渲染顺序一致）
func (m model) rows() []ladderRow {
	rows := make([]ladderRow, 0, len(m.sells)+len(m.buys))
	for _, lv := range m.sells {
		rows = append(rows, ladderRow{key: book.LevelKey{Side: types.SideSell, Price: lv.Price}, level: lv})
	}
	for _, lv := range m.buys {
		rows = append(rows, ladderRow{key: book.LevelKey{Side: types.SideBuy, Price: lv.Price}, level: lv})
	}
	return rows
}

func (m model) View() string {
	var s strings.Builder

	// 头部
	age := "等待首个快照..."
	total := 0
	if m.snap != nil {
		age = fmt.Sprintf("更新于 %v 前", time.Since(m.fetchedAt).Round(time.Second))
		total = m.snap.TotalOrders
	}
	header := headerStyle.Render(fmt.Sprintf("CLOB %s | 挂单总数: %d | %s | 刷新: %d",
		m.clob.Host(), total, age, m.trigger.Value()))
	s.WriteString(header)
	s.WriteString("\n\n")

	// 主区域：阶梯 + 右侧面板
	left := m.renderLadder()
	right := m.renderSidePanel()
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	s.WriteString("\n")

	// 通知行
	if !m.notice.Zero() {
		s.WriteString(noticeStyles[m.notice.Level].Render(m.notice.Text))
		s.WriteString("\n")
	}

	s.WriteString(dimStyle.Render(m.helpLine()))
	return s.String()
}

func (m model) helpLine() string {
	switch m.mode {
	case modeOrder:
		return "←/→ 切换方向 | tab 切换字段 | 数字输入 | enter 提交 | esc 返回"
	case modeCancel:
		return "输入订单号 | enter 撤单 | esc 返回"
	case modeStatus:
		return "输入订单号 | enter 查询 | esc 返回"
	default:
		return "↑/↓ 选择档位 | enter 展开 | o 下单 | c 撤单 | i 查单 | j 流水 | q 退出"
	}
}

func (m model) renderLadder() string {
	var s strings.Builder

	s.WriteString(fmt.Sprintf("%-10s %-10s %s\n", "价格", "数量", "订单数"))

	_ = m.rows()
	rowIdx := 0

	// 卖单在上：降序排列，最低卖价（末档）贴近中间的价差行
	if len(m.sells) == 0 {
		s.WriteString(dimStyle.Render("  无卖单"))
		s.WriteString("\n")
	}
	for _, lv := range m.sells {
		m.renderLevel(&s, lv, types.SideSell, rowIdx == m.cursor)
		rowIdx++
	}

	// 价差行
	if m.summary.BestBid > 0 && m.summary.BestAsk > 0 {
		s.WriteString(spreadStyle.Render(fmt.Sprintf("── 价差: %d (%d ↔ %d) ──",
			m.summary.Spread, m.summary.BestBid, m.summary.BestAsk)))
	} else {
		s.WriteString(spreadStyle.Render("── 价差: 0 ──"))
	}
	s.WriteString("\n")

	// 买单在下：最高买价在最上
	if len(m.buys) == 0 {
		s.WriteString(dimStyle.Render("  无买单"))
		s.WriteString("\n")
	}
	for _, lv := range m.buys {
		m.renderLevel(&s, lv, types.SideBuy, rowIdx == m.cursor)
		rowIdx++
	}

	return borderStyle.Render(s.String())
}

func (m model) renderLevel(s *strings.Builder, lv book.PriceLevel, side types.Side, selected bool) {
	style := askStyle
	if side == types.SideBuy {
		style = bidStyle
	}

	key := book.LevelKey{Side: side, Price: lv.Price}
	marker := "▸"
	if m.expansion.Expanded(key) {
		marker = "▾"
	}

	line := fmt.Sprintf("%s %-8d %-10d %d", marker, lv.Price, lv.TotalQuantity, lv.OrderCount)
	if selected {
		s.WriteString(selectedStyle.Render(line))
	} else {
		s.WriteString(style.Render(line))
	}
	s.WriteString("\n")

	if m.expansion.Expanded(key) {
		for _, o := range lv.Orders {
			s.WriteString(dimStyle.Render(fmt.Sprintf("    #%d: %d @ %d (%s)",
				o.ID, o.Quantity, o.Price, o.TimeCreated.Clock())))
			s.WriteString("\n")
		}
	}
}

func (m model) renderSidePanel() string {
	switch m.mode {
	case modeOrder:
		return m.renderOrderForm()
	case modeCancel:
		return m.renderCancelForm()
	case modeStatus:
		return m.renderStatusPanel()
	}
	if m.showJournal {
		return m.renderJournal()
	}
	return m.renderTrades()
}

func (m model) renderTrades() string {
	var s strings.Builder
	s.WriteString("最近成交\n\n")

	if len(m.trades) == 0 {
		s.WriteString(dimStyle.Render("暂无成交记录"))
	} else {
		s.WriteString(fmt.Sprintf("%-10s %-8s %s\n", "时间", "价格", "数量"))
		for _, tx := range m.trades {
			s.WriteString(fmt.Sprintf("%-10s %-8d %d\n", tx.Time.Clock(), tx.Price, tx.Quantity))
		}
		s.WriteString(dimStyle.Render(fmt.Sprintf("\n共展示 %d 条", len(m.trades))))
	}

	return borderStyle.Render(s.String())
}

func (m model) renderOrderForm() string {
	var s strings.Builder
	s.WriteString("下单\n\n")

	sideLabel := bidStyle.Render("买入")
	if m.side == types.SideSell {
		sideLabel = askStyle.Render("卖出")
	}
	s.WriteString(fmt.Sprintf("方向: %s\n", sideLabel))

	priceMark, qtyMark := " ", " "
	if m.focus == fieldPrice {
		priceMark = ">"
	} else {
		qtyMark = ">"
	}
	s.WriteString(fmt.Sprintf("%s价格: %s_\n", priceMark, m.price))
	s.WriteString(fmt.Sprintf("%s数量: %s_\n", qtyMark, m.quantity))

	return borderStyle.Render(s.String())
}

func (m model) renderCancelForm() string {
	var s strings.Builder
	s.WriteString("撤单\n\n")
	s.WriteString(fmt.Sprintf("订单号: %s_\n", m.cancelID))
	return borderStyle.Render(s.String())
}

func (m model) renderStatusPanel() string {
	var s strings.Builder
	s.WriteString("订单状态查询\n\n")
	s.WriteString(fmt.Sprintf("订单号: %s_\n\n", m.statusID))

	if m.statusErr != "" {
		s.WriteString(noticeStyles[notify.LevelError].Render(m.statusErr))
		s.WriteString("\n")
	} else if m.status != nil {
		side := "卖"
		if m.status.IsBuy {
			side = "买"
		}
		s.WriteString(fmt.Sprintf("状态: %s\n", m.status.Status))
		if m.status.Status != "not_found" {
			s.WriteString(fmt.Sprintf("方向: %s\n", side))
			s.WriteString(fmt.Sprintf("价格: %d\n", m.status.Price))
			s.WriteString(fmt.Sprintf("剩余数量: %d\n", m.status.CurrentQuantity))
		}
	}

	return borderStyle.Render(s.String())
}

func (m model) renderJournal() string {
	var s strings.Builder
	s.WriteString("本机订单流水\n\n")

	entries := m.journal.Entries()
	if len(entries) == 0 {
		s.WriteString(dimStyle.Render("尚未提交过订单"))
	} else {
		for i, e := range entries {
			if i >= 10 {
				s.WriteString(dimStyle.Render(fmt.Sprintf("... 另有 %d 条", len(entries)-10)))
				s.WriteString("\n")
				break
			}
			state := fmt.Sprintf("%d/%d", e.Filled, e.Quantity)
			if e.Cancelled {
				state = "已撤"
			}
			s.WriteString(fmt.Sprintf("#%d %s %d @ %d [%s]\n", e.OrderID, e.Side, e.Quantity, e.Price, state))
		}
	}

	return borderStyle.Render(s.String())
}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitSnapshotCmd 等待轮询器投递下一个快照
func waitSnapshotCmd(p *watch.Poller) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-p.Updates()
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	flag.Parse()

	// .env 可选，仅本地开发用
	_ = godotenv.Load()

	config.SetConfigPath(*configPath)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// TUI 进程日志只写文件，避免污染界面
	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		FileOnly:   true,
	}); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}

	clob := client.New(cfg.Server.Host, &client.Options{
		Timeout:    cfg.RequestTimeout(),
		RetryCount: cfg.Server.RetryCount,
	})

	jnl := journal.Open(persistence.NewJSONFileService(cfg.JournalPath), "tui")

	if len(os.Getenv("DEBUG")) > 0 {
		f, err := tea.LogToFile("debug.log", "debug")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
	}

	p := tea.NewProgram(initialModel(cfg, clob, jnl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("运行程序失败: %v", err)
	}
}
