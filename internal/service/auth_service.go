package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"med_edu_backend/internal/config"
	"med_edu_backend/internal/model"
	"med_edu_backend/internal/repository"
	"med_edu_backend/internal/util"
	"med_edu_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	ExamYear int    `json:"examYear" binding:"omitempty,min=2024,max=2040"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// OTPRequest 验证码下发请求
type OTPRequest struct {
	Phone string `json:"phone" binding:"required,min=8,max=20"`
}

// OTPVerifyRequest 验证码校验请求
type OTPVerifyRequest struct {
	Phone string `json:"phone" binding:"required,min=8,max=20"`
	Code  string `json:"code" binding:"required"`
}

// AuthResult 登录成功后的令牌与用户信息
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// OTPSender 短信通道外部边界，生产环境接真实网关
type OTPSender interface {
	Send(phone, code string) error
}

// LogOTPSender 开发环境实现，只写日志不发短信
type LogOTPSender struct{}

func (LogOTPSender) Send(phone, code string) error {
	logger.Log.Info("OTP issued (mock sender)", zap.String("phone", phone), zap.String("code", code))
	return nil
}

// AuthService 注册、登录与手机验证码
// 验证码状态放 redis，靠 TTL 过期，不落库
type AuthService struct {
	UserRepo *repository.UserRepository
	Redis    *redis.Client
	Sender   OTPSender
	JWTCfg   config.JWTConfig
	OTPCfg   config.OTPConfig
}

func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, sender OTPSender, jwtCfg config.JWTConfig, otpCfg config.OTPConfig) *AuthService {
	if sender == nil {
		sender = LogOTPSender{}
	}
	return &AuthService{
		UserRepo: userRepo,
		Redis:    rdb,
		Sender:   sender,
		JWTCfg:   jwtCfg,
		OTPCfg:   otpCfg,
	}
}

// Register 邮箱注册
func (s *AuthService) Register(req RegisterRequest) (*model.User, error) {
	if _, err := s.UserRepo.FindByEmail(req.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     model.Student,
		ExamYear: req.ExamYear,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Log.Info("User registered", zap.Uint("userID", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login 邮箱密码登录
func (s *AuthService) Login(req LoginRequest) (*AuthResult, error) {
	user, err := s.UserRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.JWTCfg.Secret, s.JWTCfg.ExpireTime)
	if err != nil {
		return nil, err
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		logger.Log.Warn("Failed to update last login", zap.Uint("userID", user.ID), zap.Error(err))
	}

	logger.Log.Info("User logged in", zap.Uint("userID", user.ID))
	return &AuthResult{Token: token, User: user}, nil
}

// RequestOTP 生成验证码写入 redis 并下发
func (s *AuthService) RequestOTP(ctx context.Context, req OTPRequest) error {
	code, err := generateNumericCode(s.OTPCfg.Length)
	if err != nil {
		return err
	}

	ttl := time.Duration(s.OTPCfg.ExpiryMinutes) * time.Minute
	if err := s.Redis.Set(ctx, otpKey(req.Phone), code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.Sender.Send(req.Phone, code); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}

	logger.Log.Info("OTP requested", zap.String("phone", req.Phone))
	return nil
}

// VerifyOTP 校验验证码，首次验证通过即自动建号
func (s *AuthService) VerifyOTP(ctx context.Context, req OTPVerifyRequest) (*AuthResult, error) {
	stored, err := s.Redis.Get(ctx, otpKey(req.Phone)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, util.ErrInvalidOTP
		}
		return nil, err
	}
	if stored != req.Code {
		return nil, util.ErrInvalidOTP
	}

	// 验证码一次性使用
	if err := s.Redis.Del(ctx, otpKey(req.Phone)).Err(); err != nil {
		logger.Log.Warn("Failed to delete used otp", zap.String("phone", req.Phone), zap.Error(err))
	}

	user, err := s.UserRepo.FindByPhone(req.Phone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// email 列唯一，生成占位地址避免冲突
		user = &model.User{
			Name:  fmt.Sprintf("学员%s", lastDigits(req.Phone, 4)),
			Email: fmt.Sprintf("%s@phone.local", req.Phone),
			Phone: req.Phone,
			Role:  model.Student,
		}
		if err := s.UserRepo.Create(user); err != nil {
			return nil, err
		}
		logger.Log.Info("User auto-created via OTP", zap.Uint("userID", user.ID))
	} else if err != nil {
		return nil, err
	}

	token, err := util.GenerateJWT(user, s.JWTCfg.Secret, s.JWTCfg.ExpireTime)
	if err != nil {
		return nil, err
	}
	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		logger.Log.Warn("Failed to update last login", zap.Uint("userID", user.ID), zap.Error(err))
	}

	return &AuthResult{Token: token, User: user}, nil
}

func otpKey(phone string) string {
	return "otp:" + phone
}

func generateNumericCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

func lastDigits(phone string, n int) string {
	if len(phone) <= n {
		return phone
	}
	return phone[len(phone)-n:]
}
