package qrcode

import (
	"io"

	"github.com/mdp/qrterminal/v3"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/style"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
	"rsc.io/qr"
)

func terminalLevel(l style.Level) qr.Level {
	switch l {
	case style.LevelLow:
		return qr.L
	case style.LevelMedium:
		return qr.M
	case style.LevelHigh:
		return qr.H
	default:
		return qr.Q
	}
}

// WriteTerminal prints value as a half-block QR code to w
func WriteTerminal(w io.Writer, value string, level style.Level) {
	logger.Debug("Writing terminal QR code", logger.LoggerInfo{
		ContextFunction: constant.CtxTerminal,
		Data: map[string]interface{}{
			constant.DataLevel: level,
			constant.DataSize:  len(value),
		},
	})
	qrterminal.GenerateWithConfig(value, qrterminal.Config{
		Level:          terminalLevel(level),
		Writer:         w,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
		QuietZone:      1,
	})
}
