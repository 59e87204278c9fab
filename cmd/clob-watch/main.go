package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bookbot/goclob/clob/client"
	"github.com/bookbot/goclob/clob/types"
	"github.com/bookbot/goclob/internal/book"
	"github.com/bookbot/goclob/internal/watch"
	"github.com/bookbot/goclob/pkg/config"
	"github.com/bookbot/goclob/pkg/logger"
	"github.com/bookbot/goclob/pkg/shutdown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	once := flag.Bool("once", false, "只拉取一次快照后退出")
	flag.Parse()

	_ = godotenv.Load()

	// 加载配置
	config.SetConfigPath(*configPath)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}

	clob := client.New(cfg.Server.Host, &client.Options{
		Timeout:    cfg.RequestTimeout(),
		RetryCount: cfg.Server.RetryCount,
	})

	// 显示启动信息
	fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("📊 订单簿监控程序\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("服务地址: %s\n", cfg.Server.Host)
	fmt.Printf("轮询间隔: %v\n", cfg.PollInterval())
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	if *once {
		snap, err := clob.FetchStats(context.Background())
		if err != nil {
			log.Fatalf("拉取快照失败: %v", err)
		}
		printSnapshot(snap, cfg.Poll.TradeLimit)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := watch.NewPoller(clob, cfg.PollInterval(), nil)
	go poller.Run(ctx)

	// 优雅退出
	mgr := shutdown.NewManager()
	mgr.OnShutdown(func(ctx context.Context) {
		cancel()
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case snap := <-poller.Updates():
			printSnapshot(snap.Book, cfg.Poll.TradeLimit)

		case sig := <-sigCh:
			fmt.Printf("\n收到信号 %v，正在退出...\n", sig)
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			mgr.Shutdown(shutdownCtx)
			shutdownCancel()
			logger.Info("监控程序已退出")
			return
		}
	}
}

// printSnapshot 打印一帧订单簿视图
func printSnapshot(snap *types.OrderBookSnapshot, tradeLimit int) {
	buys, sells, summary := book.Ladder(snap)
	trades := book.RecentTrades(snap, tradeLimit)

	fmt.Printf("┌─────────── %s ───────────┐\n", time.Now().Format("15:04:05"))
	fmt.Printf("│ 挂单总数: %d\n", snap.TotalOrders)
	fmt.Printf("├─ 卖盘 ───────────────────\n")
	if len(sells) == 0 {
		fmt.Printf("│   (空)\n")
	}
	for _, lv := range sells {
		fmt.Printf("│   %6d  x %-6d (%d 单)\n", lv.Price, lv.TotalQuantity, lv.OrderCount)
	}
	fmt.Printf("├─ 价差: %d (买一 %d / 卖一 %d)\n", summary.Spread, summary.BestBid, summary.BestAsk)
	fmt.Printf("├─ 买盘 ───────────────────\n")
	if len(buys) == 0 {
		fmt.Printf("│   (空)\n")
	}
	for _, lv := range buys {
		fmt.Printf("│   %6d  x %-6d (%d 单)\n", lv.Price, lv.TotalQuantity, lv.OrderCount)
	}
	if len(trades) > 0 {
		fmt.Printf("├─ 最近成交 ────────────────\n")
		for _, tx := range trades {
			fmt.Printf("│   %s  %d x %d\n", tx.Time.Clock(), tx.Price, tx.Quantity)
		}
	}
	fmt.Printf("└───────────────────────────┘\n\n")
}
