package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/findplayers-dev/findplayers/backend/internal/config"
	"github.com/findplayers-dev/findplayers/backend/internal/repository"
	"github.com/findplayers-dev/findplayers/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机空闲时间, 3: 插入随机约玩请求)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 1:
		if err := seed.InsertRandomUsers(repo, n, cfg.Seed.User.Password, cfg.Email.UserDomain); err != nil {
			logger.Error("插入随机用户失败", "error", err)
			os.Exit(1)
		}
	case 2:
		if err := seed.InsertRandomAvailability(repo); err != nil {
			logger.Error("插入随机空闲时间失败", "error", err)
			os.Exit(1)
		}
	case 3:
		if err := seed.InsertRandomGameRequests(repo, n); err != nil {
			logger.Error("插入随机约玩请求失败", "error", err)
			os.Exit(1)
		}
	default:
		logger.Error("无效的操作", "op", op)
		os.Exit(1)
	}
}
