package notify

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pidgy/drafthud/core/global"
	"github.com/pidgy/drafthud/core/rgba"
)

type (
	Post struct {
		rgba.RGBA
		time.Time

		msg    string
		orig   string
		count  int
		dedup  bool
		unique bool
	}
)

type notify struct {
	logs  []Post
	mutex sync.RWMutex
}

const maxPosts = 1024

var feed = &notify{}

func Announce(format string, a ...interface{}) {
	feed.log(zerolog.InfoLevel, rgba.Announce, true, false, false, format, a...)
}

func CLS() {
	feed.mutex.Lock()
	defer feed.mutex.Unlock()

	feed.logs = feed.logs[:0]
}

func Debug(format string, a ...interface{}) {
	if !global.DebugMode {
		return
	}

	feed.log(zerolog.DebugLevel, rgba.PastelBlue.Alpha(50), true, true, false, format, a...)
}

func Dedup(r rgba.RGBA, format string, a ...interface{}) {
	feed.log(zerolog.InfoLevel, r, true, true, false, format, a...)
}

func Error(format string, a ...interface{}) {
	feed.log(zerolog.ErrorLevel, rgba.DarkRed, true, false, false, format, a...)
}

func Feeds() []Post {
	feed.mutex.RLock()
	defer feed.mutex.RUnlock()

	return append([]Post(nil), feed.logs...)
}

func Feed(r rgba.RGBA, format string, a ...interface{}) {
	feed.log(zerolog.InfoLevel, r, true, false, false, format, a...)
}

func Last() Post {
	feed.mutex.RLock()
	defer feed.mutex.RUnlock()

	if len(feed.logs) == 0 {
		return Post{}
	}
	return feed.logs[len(feed.logs)-1]
}

// LastNStrings returns up to n of the most recent posts, oldest first.
func LastNStrings(n int) []string {
	feed.mutex.RLock()
	defer feed.mutex.RUnlock()

	if n > len(feed.logs) {
		n = len(feed.logs)
	}

	s := []string{}
	for _, p := range feed.logs[len(feed.logs)-n:] {
		s = append(s, p.String())
	}

	return s
}

func (p *Post) String() string {
	if p.count > 1 {
		return fmt.Sprintf("%s (x%d)", p.msg, p.count)
	}
	return p.msg
}

func System(format string, a ...interface{}) {
	feed.log(zerolog.InfoLevel, rgba.White, true, false, true, format, a...)
}

func Unique(c rgba.RGBA, format string, a ...interface{}) {
	feed.log(zerolog.InfoLevel, c, true, false, true, format, a...)
}

func Warn(format string, a ...interface{}) {
	feed.log(zerolog.WarnLevel, rgba.Pinkity, true, false, false, format, a...)
}

func (n *notify) log(level zerolog.Level, r rgba.RGBA, clock, dedup, unique bool, format string, a ...interface{}) {
	p := Post{
		RGBA: r,
		Time: time.Now(),

		orig:   fmt.Sprintf(format, a...),
		count:  1,
		dedup:  dedup,
		unique: unique,
	}

	log.WithLevel(level).Msg(p.orig)

	if clock {
		h, m, s := p.Time.Clock()
		p.msg = fmt.Sprintf("[%02d:%02d:%02d] %s", h, m, s, p.orig)
	} else {
		p.msg = p.orig
	}

	n.mutex.Lock()
	defer n.mutex.Unlock()

	walked := 0
	for i := len(n.logs) - 1; i >= 0 && !unique; i-- {
		if walked > 3 {
			break
		}
		walked++

		p1s := strings.SplitAfter(p.orig, "]")
		p2s := strings.SplitAfter(n.logs[i].orig, "]")
		if p1s[len(p1s)-1] == p2s[len(p2s)-1] {
			if dedup {
				n.logs[i].count = 1
			} else {
				n.logs[i].count++
			}
			return
		}
	}

	if len(n.logs) >= maxPosts {
		n.logs = append(n.logs[:0], n.logs[len(n.logs)-maxPosts/2:]...)
	}

	n.logs = append(n.logs, p)
}
