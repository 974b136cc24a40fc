package redisrepo

import "fmt"

const (
	USER_CACHE_KEY = "user-cache:%s" // <userID>
	ARTICLE_KEY    = "article:%d"    // <articleID>
)

func UserCacheKey(userID string) string {
	return fmt.Sprintf(USER_CACHE_KEY, userID)
}

func ArticleKey(articleID int64) string {
	return fmt.Sprintf(ARTICLE_KEY, articleID)
}
