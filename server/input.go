package server

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrProtocolViolation 请求行不符合语法
var ErrProtocolViolation = errors.New("protocol violation")

// Command 客户端请求类型
type Command int

const (
	CmdLook Command = iota
	CmdHelp
	CmdBye
	CmdDig
	CmdFlag
	CmdDeflag
)

func (c Command) String() string {
	switch c {
	case CmdLook:
		return "look"
	case CmdHelp:
		return "help"
	case CmdBye:
		return "bye"
	case CmdDig:
		return "dig"
	case CmdFlag:
		return "flag"
	case CmdDeflag:
		return "deflag"
	default:
		return "unknown"
	}
}

// Request 一行解析后的请求；X/Y 仅对 dig/flag/deflag 有意义
type Request struct {
	Command Command
	X, Y    int
}

// 语法：look | help | bye | (dig|flag|deflag) SP INT SP INT，区分大小写
var requestRe = regexp.MustCompile(`^(?:(look|help|bye)|(dig|flag|deflag) (-?[0-9]+) (-?[0-9]+))$`)

var commands = map[string]Command{
	"look":   CmdLook,
	"help":   CmdHelp,
	"bye":    CmdBye,
	"dig":    CmdDig,
	"flag":   CmdFlag,
	"deflag": CmdDeflag,
}

// ParseRequest 解析一行请求（不含换行符）
func ParseRequest(line string) (Request, error) {
	m := requestRe.FindStringSubmatch(line)
	if m == nil {
		return Request{}, fmt.Errorf("%w: %q", ErrProtocolViolation, line)
	}
	if m[1] != "" {
		return Request{Command: commands[m[1]]}, nil
	}
	x, err := strconv.Atoi(m[3])
	if err != nil {
		return Request{}, fmt.Errorf("%w: x: %v", ErrProtocolViolation, err)
	}
	y, err := strconv.Atoi(m[4])
	if err != nil {
		return Request{}, fmt.Errorf("%w: y: %v", ErrProtocolViolation, err)
	}
	return Request{Command: commands[m[2]], X: x, Y: y}, nil
}
