package server

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// 默认配置
const (
	DefaultPort = 4444
	DefaultSize = 10
)

// Usage 命令行用法
const Usage = "usage: minesweeper [--debug] [--port PORT] [--size SIZE | --file FILE] [--http ADDR] [--log FILE]"

// Config 启动参数。Size 与 File 只会有一个生效（File 非空时 Size 为 0）。
type Config struct {
	Debug    bool
	Port     int
	Size     int
	File     string
	HTTPAddr string // 管理接口地址，为空则不启动
	LogFile  string // 为空则输出到 stderr
}

// EnvLookup 读取环境变量，缺失时回退到 dotenvPath 文件中的值。
// 文件不存在不是错误。
func EnvLookup(dotenvPath string) (func(string) string, error) {
	vals, err := godotenv.Read(dotenvPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", dotenvPath, err)
		}
		vals = map[string]string{}
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return vals[key]
	}, nil
}

// LoadConfig 默认值 < 环境变量 < 命令行参数
func LoadConfig(args []string, getenv func(string) string) (Config, error) {
	cfg := Config{Port: DefaultPort, Size: DefaultSize}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}

	flags := flag.NewFlagSet("minesweeper", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	debug := flags.Bool("debug", cfg.Debug, "do not disconnect clients after BOOM")
	noDebug := flags.Bool("no-debug", false, "disconnect clients after BOOM")
	port := flags.Int("port", cfg.Port, "TCP port to listen on")
	size := flags.Int("size", cfg.Size, "side length of a random board")
	file := flags.String("file", cfg.File, "load the board from FILE")
	httpAddr := flags.String("http", cfg.HTTPAddr, "admin/websocket listen address, e.g. :8080")
	logFile := flags.String("log", cfg.LogFile, "log file path")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	if flags.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected argument %q", flags.Arg(0))
	}

	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["size"] && set["file"] {
		return Config{}, errors.New("--size and --file may not be used together")
	}

	cfg.Debug = *debug && !*noDebug
	cfg.Port = *port
	cfg.HTTPAddr = *httpAddr
	cfg.LogFile = *logFile
	switch {
	case set["size"]:
		cfg.Size, cfg.File = *size, ""
	case set["file"]:
		cfg.Size, cfg.File = 0, *file
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("MINESWEEPER_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MINESWEEPER_DEBUG: %w", err)
		}
		c.Debug = b
	}
	if v := getenv("MINESWEEPER_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MINESWEEPER_PORT: %w", err)
		}
		c.Port = n
	}
	size, file := getenv("MINESWEEPER_SIZE"), getenv("MINESWEEPER_FILE")
	if size != "" && file != "" {
		return errors.New("MINESWEEPER_SIZE and MINESWEEPER_FILE may not be used together")
	}
	if size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return fmt.Errorf("MINESWEEPER_SIZE: %w", err)
		}
		c.Size = n
	}
	if file != "" {
		c.Size, c.File = 0, file
	}
	if v := getenv("MINESWEEPER_HTTP"); v != "" {
		c.HTTPAddr = v
	}
	if v := getenv("MINESWEEPER_LOG"); v != "" {
		c.LogFile = v
	}
	return nil
}

// Validate 检查端口范围、棋盘尺寸以及文件是否存在
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.File == "" {
		if c.Size < 1 {
			return fmt.Errorf("size %d, need at least 1", c.Size)
		}
		return nil
	}
	fi, err := os.Stat(c.File)
	if err != nil || !fi.Mode().IsRegular() {
		return fmt.Errorf("file not found: %q", c.File)
	}
	return nil
}
