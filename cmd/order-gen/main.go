package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bookbot/goclob/clob/client"
	"github.com/bookbot/goclob/clob/types"
	"github.com/bookbot/goclob/pkg/config"
	"github.com/bookbot/goclob/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	count := flag.Int("n", 0, "生成订单数量（0 表示持续生成）")
	interval := flag.Duration("interval", 500*time.Millisecond, "下单间隔")
	basePrice := flag.Int64("base", 100, "价格中枢")
	priceStddev := flag.Float64("stddev", 5, "价格标准差")
	maxQuantity := flag.Int64("max-qty", 10, "单笔最大数量")
	flag.Parse()

	_ = godotenv.Load()

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

	fmt.Printf("🎲 订单生成器启动: 目标 %s, 价格中枢 %d ± %.1f\n",
		cfg.Server.Host, *basePrice, *priceStddev)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sent := 0
	for *count == 0 || sent < *count {
		select {
		case <-ctx.Done():
			fmt.Printf("\n已生成 %d 笔订单\n", sent)
			return
		case <-ticker.C:
		}

		req := randomOrder(rng, *basePrice, *priceStddev, *maxQuantity)
		resp, err := clob.CreateOrder(ctx, req)
		if err != nil {
			logger.Warnf("下单失败: %v", err)
			continue
		}
		sent++

		state := "挂单"
		if resp.RemainingQuantity == 0 {
			state = "全部成交"
		} else if resp.FilledQuantity > 0 {
			state = "部分成交"
		}
		fmt.Printf("[%d] %s %d x %d → #%d (%s)\n",
			sent, req.Side(), req.Quantity, req.Price, resp.OrderID, state)
	}

	fmt.Printf("\n已生成 %d 笔订单\n", sent)
}

// randomOrder 围绕价格中枢按正态分布取价，买卖各半
func randomOrder(rng *rand.Rand, base int64, stddev float64, maxQty int64) types.CreateOrderRequest {
	price := base + int64(rng.NormFloat64()*stddev)
	if price < 1 {
		price = 1
	}
	return types.CreateOrderRequest{
		BuyOrder: rng.Intn(2) == 0,
		Price:    price,
		Quantity: 1 + rng.Int63n(maxQty),
	}
}
