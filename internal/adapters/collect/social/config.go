package social

import (
	"time"

	"narrativeradar/internal/platform/config"
)

// OptionsFromEnv reads COLLECT_SOCIAL_* keys from c over DefaultOptions
func OptionsFromEnv(c config.Conf) Options {
	s := c.Prefix("SOCIAL_")
	d := DefaultOptions()
	d.RedditURL = s.MayURL("REDDIT_URL", d.RedditURL)
	d.StackExchangeURL = s.MayURL("STACKEXCHANGE_URL", d.StackExchangeURL)
	d.Blog.URL = s.MayURL("BLOG_RSS", d.Blog.URL)
	d.Forum.URL = s.MayURL("FORUM_RSS", d.Forum.URL)
	d.SolanaLimit = s.MayInt("REDDIT_SOLANA_LIMIT", d.SolanaLimit)
	d.SolanaDevLimit = s.MayInt("REDDIT_SOLANADEV_LIMIT", d.SolanaDevLimit)
	d.HTTP.Timeout = s.MayDuration("TIMEOUT", 15*time.Second)
	d.HTTP.RetryCount = s.MayInt("RETRIES", 1)
	return d
}
