package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/conversation"
	routeruc "github.com/kailas-cloud/chatdesk/internal/usecase/router"
)

const (
	modeChat    = "chat"
	modeSearch  = "search"
	modeYouTube = "youtube"
)

var (
	chatMode     string
	chatVideoURL string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to chatdesk from the terminal",
	Long: `chat starts an interactive session. The default mode is the routed
conversation; --mode search answers from web search and --mode youtube answers
about the video given with --url. Type /reset to start over or /exit to quit.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch chatMode {
		case modeChat, modeSearch:
		case modeYouTube:
			if chatVideoURL == "" {
				return errors.New("--url is required in youtube mode")
			}
		default:
			return fmt.Errorf("unknown mode %q", chatMode)
		}

		cfg, env, err := loadConfig()
		if err != nil {
			return err
		}
		if logLevel == "" {
			cfg.Logging.Level = "warn"
		}
		logger, err := newLogger(env, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		r := &repl{app: a, mode: chatMode, videoURL: chatVideoURL, conv: routeruc.NewConversation()}
		return r.run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatMode, "mode", "m", modeChat, "chat, search or youtube")
	chatCmd.Flags().StringVar(&chatVideoURL, "url", "", "video URL for youtube mode")
	rootCmd.AddCommand(chatCmd)
}

// repl holds one terminal session.
type repl struct {
	app      *app
	mode     string
	videoURL string
	conv     *conversation.Conversation
	history  []domain.Message
}

func (r *repl) run(ctx context.Context, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		_, _ = fmt.Fprint(out, "> ")
		if !sc.Scan() {
			_, _ = fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			r.conv.Reset()
			r.history = nil
			_, _ = fmt.Fprintln(out, "(reset)")
			continue
		}

		reply, err := r.turn(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		_, _ = fmt.Fprintln(out, reply)
	}
}

func (r *repl) turn(ctx context.Context, line string) (string, error) {
	switch r.mode {
	case modeSearch:
		r.history = append(r.history, domain.UserMessage(line))
		ans, err := r.app.search.Ask(ctx, line, r.history)
		if err != nil {
			return "", err
		}
		r.history = append(r.history, domain.AssistantMessage(ans.Reply))
		return ans.Reply, nil
	case modeYouTube:
		r.history = append(r.history, domain.UserMessage(line))
		ans, err := r.app.video.AskURL(ctx, r.videoURL, line, r.history)
		if err != nil {
			return "", err
		}
		r.history = append(r.history, domain.AssistantMessage(ans.Reply))
		return ans.Reply, nil
	default:
		turn, err := r.app.router.Discuss(ctx, r.conv, line)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%s] %s", turn.State, turn.Reply), nil
	}
}
