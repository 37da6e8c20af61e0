package normalizer

import "github.com/kapu/viralscope-go/internal/domain"

// fieldMap lists, per canonical field, the known key aliases in priority
// order. Providers rename keys between versions, so several are tried.
type fieldMap struct {
	roots       []string
	handle      []string
	displayName []string
	bio         []string
	avatar      []string
	url         []string
	followers   []string
	following   []string
	posts       []string
	likes       []string
	views       []string
	verified    []string
	private     []string
	samples     []sampleSource
}

// sampleSource locates recent posts. An empty array path means the payload
// items are themselves the posts.
type sampleSource struct {
	array    string
	likes    []string
	comments []string
}

var fieldMaps = map[domain.Platform]fieldMap{
	domain.PlatformInstagram: {
		roots:       []string{"", "graphql.user", "data.user", "user"},
		handle:      []string{"username", "userName"},
		displayName: []string{"fullName", "full_name"},
		bio:         []string{"biography", "bio"},
		avatar:      []string{"profilePicUrlHD", "profilePicUrl", "profile_pic_url_hd", "profile_pic_url"},
		url:         []string{"url", "external_url_profile"},
		followers:   []string{"followersCount", "edge_followed_by.count", "follower_count"},
		following:   []string{"followsCount", "edge_follow.count", "following_count"},
		posts:       []string{"postsCount", "edge_owner_to_timeline_media.count", "media_count"},
		likes:       []string{"totalLikes", "likesCount"},
		views:       []string{"totalViews"},
		verified:    []string{"verified", "is_verified"},
		private:     []string{"private", "is_private"},
		samples: []sampleSource{
			{array: "latestPosts", likes: []string{"likesCount", "likes"}, comments: []string{"commentsCount", "comments"}},
			{
				array:    "edge_owner_to_timeline_media.edges",
				likes:    []string{"node.edge_liked_by.count", "node.edge_media_preview_like.count"},
				comments: []string{"node.edge_media_to_comment.count"},
			},
		},
	},
	domain.PlatformTikTok: {
		roots:       []string{"authorMeta", "author", "user", "userInfo.user", "userInfo.stats", "authorStats", ""},
		handle:      []string{"name", "uniqueId", "username"},
		displayName: []string{"nickName", "nickname", "displayName"},
		bio:         []string{"signature", "bio", "description"},
		avatar:      []string{"avatar", "avatarLarger", "avatarMedium", "avatarThumb"},
		url:         []string{"profileUrl"},
		followers:   []string{"fans", "followerCount", "followers"},
		following:   []string{"following", "followingCount"},
		posts:       []string{"video", "videoCount", "videos"},
		likes:       []string{"heart", "heartCount", "likes"},
		views:       []string{"totalViews", "playCount"},
		verified:    []string{"verified"},
		private:     []string{"privateAccount", "private", "secret"},
		samples: []sampleSource{
			{likes: []string{"diggCount", "stats.diggCount"}, comments: []string{"commentCount", "stats.commentCount"}},
		},
	},
	domain.PlatformYouTube: {
		roots:       []string{"aboutChannelInfo", "snippet", "statistics", ""},
		handle:      []string{"channelUsername", "customUrl", "handle"},
		displayName: []string{"channelName", "title"},
		bio:         []string{"channelDescription", "description"},
		avatar:      []string{"channelAvatarUrl", "thumbnails.high.url", "thumbnails.medium.url", "thumbnails.default.url"},
		url:         []string{"channelUrl", "inputChannelUrl"},
		followers:   []string{"numberOfSubscribers", "subscriberCount"},
		posts:       []string{"channelTotalVideos", "videoCount"},
		likes:       []string{"totalLikes"},
		views:       []string{"channelTotalViews", "viewCount"},
		verified:    []string{"isChannelVerified", "isVerified"},
		samples: []sampleSource{
			{array: "recentVideos", likes: []string{"statistics.likeCount", "likes"}, comments: []string{"statistics.commentCount", "commentsCount"}},
			{likes: []string{"likes", "likeCount"}, comments: []string{"commentsCount", "commentCount"}},
		},
	},
	domain.PlatformKwai: {
		roots:       []string{"user", "userProfile", "profile", "author", ""},
		handle:      []string{"userName", "kwaiId", "username", "user_name"},
		displayName: []string{"nickname", "nickName", "displayName", "name"},
		bio:         []string{"bio", "description", "user_text", "signature"},
		avatar:      []string{"headUrl", "avatar", "avatarUrl", "profilePicUrl"},
		url:         []string{"profileUrl", "url"},
		followers:   []string{"fans", "followers", "followerCount", "fan"},
		following:   []string{"follow", "following", "followingCount"},
		posts:       []string{"photoCount", "photo", "videoCount", "posts"},
		likes:       []string{"likeCount", "likes", "totalLikes"},
		views:       []string{"viewCount", "playCount"},
		verified:    []string{"verified", "isVerified"},
		private:     []string{"privacy", "isPrivate", "private"},
		samples: []sampleSource{
			{array: "feeds", likes: []string{"likeCount", "like_count", "likes"}, comments: []string{"commentCount", "comment_count", "comments"}},
			{array: "videos", likes: []string{"likeCount", "likes"}, comments: []string{"commentCount", "comments"}},
		},
	},
}
