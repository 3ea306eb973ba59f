package system

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"syscall"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	if rLimit.Cur >= 2048 {
		return
	}
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// hardwareEncoders в порядке приоритета:
// 1. MacOS (VideoToolbox)
// 2. NVIDIA (NVENC)
// Иначе программный libx264.
var hardwareEncoders = []string{"h264_videotoolbox", "h264_nvenc"}

func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(encoderList string) string {
	for _, name := range hardwareEncoders {
		if strings.Contains(encoderList, name) {
			return name
		}
	}
	return "libx264"
}
