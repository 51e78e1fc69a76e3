package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// guildSession is the part of *discordgo.Session the presenter uses.
type guildSession interface {
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
	UpdateWatchStatus(idle int, name string) error
}

// DiscordPresenter shows a status as the bot nickname on every guild and
// as its "watching" activity.
type DiscordPresenter struct {
	session guildSession
	guilds  func() []string
}

// NewDiscordPresenter presents on the guilds tracked by the session state.
func NewDiscordPresenter(s *discordgo.Session) *DiscordPresenter {
	return &DiscordPresenter{
		session: s,
		guilds: func() []string {
			s.State.RLock()
			defer s.State.RUnlock()
			ids := make([]string, 0, len(s.State.Guilds))
			for _, g := range s.State.Guilds {
				ids = append(ids, g.ID)
			}
			return ids
		},
	}
}

// SetNick renames the bot on all guilds concurrently.
func (p *DiscordPresenter) SetNick(ctx context.Context, nick string) error {
	g, _ := errgroup.WithContext(ctx)
	for _, id := range p.guilds() {
		id := id
		g.Go(func() error {
			if err := p.session.GuildMemberNickname(id, "@me", nick); err != nil {
				return fmt.Errorf("guild %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *DiscordPresenter) SetPresence(_ context.Context, text string) error {
	return p.session.UpdateWatchStatus(0, text)
}

// NewSession creates a bot session for token. It is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return s, nil
}

// openAndWait opens the session and blocks until the ready event or ctx is done.
func openAndWait(ctx context.Context, s *discordgo.Session) (bool, error) {
	ready := make(chan struct{})
	s.AddHandlerOnce(func(_ *discordgo.Session, _ *discordgo.Ready) {
		close(ready)
	})
	if err := s.Open(); err != nil {
		return false, fmt.Errorf("open discord session: %w", err)
	}
	select {
	case <-ctx.Done():
		return false, nil
	case <-ready:
		return true, nil
	}
}

// RunTicker logs the session in and runs t until ctx is done.
func RunTicker(ctx context.Context, s *discordgo.Session, t *Ticker) error {
	ok, err := openAndWait(ctx, s)
	if err != nil {
		return err
	}
	defer s.Close()
	if !ok {
		return nil
	}
	return t.Run(ctx)
}

// RunCommander registers the /pool command and answers interactions until ctx is done.
func RunCommander(ctx context.Context, s *discordgo.Session, c *Commander) error {
	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		c.handleInteraction(ctx, s, i)
	})

	ok, err := openAndWait(ctx, s)
	if err != nil {
		return err
	}
	defer s.Close()
	if !ok {
		return nil
	}

	cmd, err := s.ApplicationCommandCreate(s.State.User.ID, "", &discordgo.ApplicationCommand{
		Name:        poolCommand,
		Description: "Get data for specific pool",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        poolQueryOption,
				Description: "Pool address or search query",
				Required:    true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("register /%s: %w", poolCommand, err)
	}
	c.logger.Info("commander ready", zap.String("command", cmd.Name))

	<-ctx.Done()
	return nil
}

func (c *Commander) handleInteraction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	var run func() (Reply, error)
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		if data.Name != poolCommand || len(data.Options) == 0 {
			return
		}
		query := data.Options[0].StringValue()
		run = func() (Reply, error) { return c.HandlePool(ctx, query) }
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		if data.CustomID != poolSelectID || len(data.Values) == 0 {
			return
		}
		addr := data.Values[0]
		run = func() (Reply, error) { return c.HandleSelect(ctx, addr) }
	default:
		return
	}

	// pool loads can outlast the interaction deadline
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsSuppressEmbeds},
	})
	if err != nil {
		c.logger.Error("defer interaction failed", zap.Error(err))
		return
	}

	reply, err := run()
	if err != nil {
		c.logger.Error("pool command failed", zap.Error(err))
		reply = Reply{Content: failureReply}
	}

	content := reply.Content
	components := replyComponents(reply)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
	}); err != nil {
		c.logger.Error("edit interaction failed", zap.Error(err))
	}
}

// replyComponents renders choices as a single select menu.
func replyComponents(reply Reply) []discordgo.MessageComponent {
	if len(reply.Choices) == 0 {
		return []discordgo.MessageComponent{}
	}
	options := make([]discordgo.SelectMenuOption, 0, len(reply.Choices))
	for _, ch := range reply.Choices {
		options = append(options, discordgo.SelectMenuOption{Label: ch.Label, Value: ch.Value})
	}
	one := 1
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    poolSelectID,
					Placeholder: poolPlaceholder,
					MinValues:   &one,
					MaxValues:   1,
					Options:     options,
				},
			},
		},
	}
}
