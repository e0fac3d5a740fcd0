package service

import (
	"strings"
	"time"

	"github.com/Leclee/lecfaka/internal/models"
	"github.com/Leclee/lecfaka/internal/repository"

	"gorm.io/gorm"
)

// 批量导入时密文与展示名的分隔符
const cardImportSeparator = "----"

// CardService 卡密库存服务
type CardService struct {
	cardRepo      repository.CardRepository
	commodityRepo repository.CommodityRepository
}

// NewCardService 创建卡密服务
func NewCardService(cardRepo repository.CardRepository, commodityRepo repository.CommodityRepository) *CardService {
	return &CardService{
		cardRepo:      cardRepo,
		commodityRepo: commodityRepo,
	}
}

// ImportReport 批量导入结果
type ImportReport struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"` // 批内重复 + 库内已存在
}

// ImportCards 批量导入卡密。
// 行格式：secret 或 secret----展示名；空行丢弃，重复密文丢弃并计数。
func (s *CardService) ImportCards(commodityID uint, race string, text string) (*ImportReport, error) {
	commodity, err := s.commodityRepo.GetByID(commodityID)
	if err != nil {
		return nil, err
	}
	if commodity == nil {
		return nil, ErrCommodityNotFound
	}

	report := &ImportReport{}
	seen := make(map[string]struct{})
	var candidates []models.Card
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		secret := line
		display := ""
		if idx := strings.Index(line, cardImportSeparator); idx > 0 {
			secret = strings.TrimSpace(line[:idx])
			display = strings.TrimSpace(line[idx+len(cardImportSeparator):])
		}
		if secret == "" {
			continue
		}
		if _, ok := seen[secret]; ok {
			report.Duplicates++
			continue
		}
		seen[secret] = struct{}{}
		candidates = append(candidates, models.Card{
			CommodityID: commodityID,
			Secret:      secret,
			Display:     display,
			Race:        race,
		})
	}
	if len(candidates) == 0 {
		return nil, ErrImportEmpty
	}

	secrets := make([]string, 0, len(candidates))
	for _, card := range candidates {
		secrets = append(secrets, card.Secret)
	}
	existing, err := s.cardRepo.ListSecretsByCommodity(commodityID, secrets)
	if err != nil {
		return nil, err
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, secret := range existing {
		existingSet[secret] = struct{}{}
	}

	fresh := candidates[:0]
	for _, card := range candidates {
		if _, ok := existingSet[card.Secret]; ok {
			report.Duplicates++
			continue
		}
		fresh = append(fresh, card)
	}
	if len(fresh) == 0 {
		return report, ErrImportEmpty
	}
	if err := s.cardRepo.CreateBatch(fresh); err != nil {
		return nil, err
	}
	report.Imported = len(fresh)
	return report, nil
}

// Stock 查询可用库存（不加锁，展示与快速失败用）
func (s *CardService) Stock(commodityID uint, race string) (int64, error) {
	return s.cardRepo.CountAvailable(commodityID, race)
}

// ListDrafts 列出可预选的卡密（不含密文）
func (s *CardService) ListDrafts(commodityID uint, race string) ([]models.Card, error) {
	commodity, err := s.commodityRepo.GetByID(commodityID)
	if err != nil {
		return nil, err
	}
	if commodity == nil {
		return nil, ErrCommodityNotFound
	}
	if !commodity.DraftOpen {
		return nil, ErrDraftNotAllowed
	}
	return s.cardRepo.ListDrafts(commodityID, race)
}

// ClearUnsold 清空商品的未售卡密，返回删除数量
func (s *CardService) ClearUnsold(commodityID uint) (int64, error) {
	return s.cardRepo.DeleteUnsold(commodityID)
}

// ListByOrder 查询订单名下的卡密
func (s *CardService) ListByOrder(orderID uint) ([]models.Card, error) {
	return s.cardRepo.ListByOrder(orderID)
}

// AllocateTx 在事务内为订单锁定并售出卡密，返回拼合后的密文。
// 全量成功或全量失败，绝不提交部分分配。预选卡密被抢占与普通缺货
// 返回不同的错误。行锁带 SKIP LOCKED：高并发下被其他事务占住的行
// 直接跳过，偶发把"还有货"判成缺货是既定语义。
func (s *CardService) AllocateTx(tx *gorm.DB, order *models.Order, commodity *models.Commodity) (string, error) {
	if tx == nil || order == nil || commodity == nil {
		return "", ErrStockInsufficient
	}
	repo := s.cardRepo.WithTx(tx)
	now := time.Now()

	if order.CardID != 0 {
		card, err := repo.GetAvailableByIDLocked(order.CardID)
		if err != nil {
			return "", err
		}
		if card == nil || card.CommodityID != commodity.ID {
			return "", ErrPreSelectedTaken
		}
		affected, err := repo.MarkSold([]uint{card.ID}, order.ID, now)
		if err != nil {
			return "", err
		}
		if affected != 1 {
			return "", ErrPreSelectedTaken
		}
		return card.Secret, nil
	}

	cards, err := repo.SelectAvailableLocked(commodity.ID, order.Race, order.Quantity, commodity.PickMode)
	if err != nil {
		return "", err
	}
	if len(cards) < order.Quantity {
		return "", ErrStockInsufficient
	}
	ids := make([]uint, 0, len(cards))
	secrets := make([]string, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
		secrets = append(secrets, card.Secret)
	}
	affected, err := repo.MarkSold(ids, order.ID, now)
	if err != nil {
		return "", err
	}
	if affected != int64(len(ids)) {
		return "", ErrStockInsufficient
	}
	return strings.Join(secrets, "\n"), nil
}
