package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrPhoneRegistered    = errors.New("该手机号已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid or expired otp code")
	ErrTopicNotFound      = errors.New("topic not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrNoContentForTopic  = errors.New("no content available for this topic")
	ErrJobNotFound        = errors.New("ingestion job not found")
	ErrPermissionDenied   = errors.New("permission denied")
)
