package database

import (
	"fmt"
	"log"
	"med_edu_backend/internal/config"
	"med_edu_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Topic{},
		&model.Chunk{},
		&model.IngestionJob{},
		&model.QuizQuestion{},
		&model.QuizAnswer{},
		&model.Mastery{},
		&model.StudyPlanLog{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认主题目录（按器官系统组织），库为空时初始化
	var count int64
	db.Model(&model.Topic{}).Count(&count)
	if count == 0 {
		seedTopics(db)
	}

	return db, nil
}

func seedTopics(db *gorm.DB) {
	systems := map[string][]string{
		"Cardiovascular":   {"Hypertension", "Heart Failure", "Arrhythmias", "Ischemic Heart Disease"},
		"Respiratory":      {"Asthma", "COPD", "Pneumonia", "Pulmonary Embolism"},
		"Gastrointestinal": {"Peptic Ulcer Disease", "Inflammatory Bowel Disease", "Hepatitis"},
		"Renal":            {"Acute Kidney Injury", "Chronic Kidney Disease", "Nephrotic Syndrome"},
		"Endocrine":        {"Diabetes Mellitus", "Thyroid Disorders", "Adrenal Disorders"},
		"Neurology":        {"Stroke", "Seizure Disorders", "Headache Syndromes"},
		"Infectious":       {"Sepsis", "Tuberculosis", "HIV and Opportunistic Infections"},
		"Pharmacology":     {"Antibiotics", "Anticoagulants", "Autonomic Drugs"},
	}

	for systemName, topicNames := range systems {
		parent := &model.Topic{
			Name:       systemName,
			SystemName: systemName,
		}
		if err := db.Create(parent).Error; err != nil {
			log.Printf("Failed to seed system topic %s: %v", systemName, err)
			continue
		}
		for _, name := range topicNames {
			child := &model.Topic{
				ParentID:   &parent.ID,
				Name:       name,
				SystemName: systemName,
			}
			if err := db.Create(child).Error; err != nil {
				log.Printf("Failed to seed topic %s: %v", name, err)
			}
		}
	}

	log.Println("Seeded default topic taxonomy")
}
