package handler

import (
	"context"
	"fmt"
	"time"

	"activities/internal/appers"
	"activities/internal/application/common"
	"activities/internal/application/entity"
	use_cases "activities/internal/application/use-cases"
	"activities/pkg/validator"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type Handler interface {
	CreateActivity(c *fiber.Ctx) error
	AllActivities(c *fiber.Ctx) error
	AvailableActivities(c *fiber.Ctx) error
	SearchActivities(c *fiber.Ctx) error
	ActivityByID(c *fiber.Ctx) error
	ModifyActivity(c *fiber.Ctx) error
	DeleteActivity(c *fiber.Ctx) error
	AddAddress(c *fiber.Ctx) error
	AddTags(c *fiber.Ctx) error
	AddParticipant(c *fiber.Ctx) error
	RemoveParticipant(c *fiber.Ctx) error
	FreePlace(c *fiber.Ctx) error
	OpinionsByActivity(c *fiber.Ctx) error
	AddOpinion(c *fiber.Ctx) error
	DeleteOpinion(c *fiber.Ctx) error
	HealthCheck(c *fiber.Ctx) error
}
type HandlerImpl struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewActivityHandler(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *HandlerImpl {
	return &HandlerImpl{
		usecase: usecase,
		logger:  logger,
	}
}

// formatValidationErrors форматирует ошибки валидации в понятный формат для клиента
func formatValidationErrors(err error) fiber.Map {
	var errors []string
	if validationErrors, ok := err.(playgroundvalidator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			tag := e.Tag()
			var message string
			switch tag {
			case "required":
				message = fmt.Sprintf("поле '%s' обязательно для заполнения", field)
			case "min":
				message = fmt.Sprintf("поле '%s' должно содержать минимум %s элементов", field, e.Param())
			case "max":
				message = fmt.Sprintf("поле '%s' должно содержать максимум %s символов", field, e.Param())
			default:
				message = fmt.Sprintf("поле '%s' не прошло валидацию: %s", field, tag)
			}
			errors = append(errors, message)
		}
	} else {
		errors = append(errors, err.Error())
	}
	return fiber.Map{
		"error":   "validation failed",
		"details": errors,
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.FromString(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

// HealthCheck godoc
// @Summary     Проверка состояния сервиса
// @Description Проверяет доступность базы данных PostgreSQL и Kafka.
// @Accept      json
// @Produce     json
// @Success     200   {object} entity.HealthCheckResponse "Все сервисы доступны"
// @Failure     503   {object} entity.HealthCheckResponse "Один или несколько сервисов недоступны"
// @tags        Health
// @Router      /health [get]
func (h *HandlerImpl) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	dbHealthy, kafkaHealthy, _ := h.usecase.HealthCheck(ctx)

	health := fiber.Map{
		"status":  dbHealthy && kafkaHealthy,
		"message": "success",
		"version": common.Version,
		"checks": fiber.Map{
			"database": fiber.Map{
				"status": dbHealthy,
				"type":   "postgresql",
			},
			"kafka": fiber.Map{
				"status": kafkaHealthy,
				"type":   "kafka",
			},
		},
	}
	if !dbHealthy {
		health["checks"].(fiber.Map)["database"].(fiber.Map)["error"] = "Database connection failed"
		health["message"] = "Some services are unavailable"
	}
	if !kafkaHealthy {
		health["checks"].(fiber.Map)["kafka"].(fiber.Map)["error"] = "Kafka connection failed"
		health["message"] = "Some services are unavailable"
	}

	if !dbHealthy || !kafkaHealthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(health)
	}

	return c.Status(fiber.StatusOK).JSON(health)
}

// CreateActivity godoc
// @Summary     Создание активности
// @Description Прогоняет заявку через правила и создаёт активность, создатель — вызывающий
// @Accept      json
// @Produce     json
// @Param       body  body     entity.ActivityRequest  true  "Данные активности"
// @Success     201   {object} entity.Activity
// @Failure     400
// @Failure     409
// @Failure     500
// @tags        Activity
// @Router      /activities/api/v1/activity [post]
func (h *HandlerImpl) CreateActivity(c *fiber.Ctx) error {
	var req entity.ActivityRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Errorf("error parsing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	// Валидация формы; диапазоны полей проверяет движок правил
	if err := validator.Validate.Struct(&req); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(err))
	}

	act, err := h.usecase.CreateActivity(c.Context(), identityFromCtx(c), req)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(act)
}

// AllActivities godoc
// @Summary     Список всех активностей
// @Produce     json
// @Success     200   {array}  entity.Activity
// @Failure     404
// @tags        Activity
// @Router      /activities/api/v1/activity [get]
func (h *HandlerImpl) AllActivities(c *fiber.Ctx) error {
	activities, err := h.usecase.AllActivities(c.Context())
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(activities)
}

// AvailableActivities godoc
// @Summary     Активности с датой позже сегодняшней
// @Produce     json
// @Success     200   {array}  entity.Activity
// @Failure     404
// @tags        Activity
// @Router      /activities/api/v1/activity/available [get]
func (h *HandlerImpl) AvailableActivities(c *fiber.Ctx) error {
	activities, err := h.usecase.AvailableActivities(c.Context())
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(activities)
}

// SearchActivities godoc
// @Summary     Поиск активностей по тэгу, имени или дате
// @Produce     json
// @Param       tag   query    string false "Имя тэга"
// @Param       name  query    string false "Фрагмент имени"
// @Param       date  query    string false "Дата (2006-01-02)"
// @Success     200   {array}  entity.Activity
// @Failure     400
// @Failure     404
// @tags        Activity
// @Router      /activities/api/v1/activity/search [get]
func (h *HandlerImpl) SearchActivities(c *fiber.Ctx) error {
	switch {
	case c.Query("tag") != "":
		activities, err := h.usecase.ActivitiesByTagName(c.Context(), c.Query("tag"))
		if err != nil {
			return appers.SanitizeError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(activities)
	case c.Query("name") != "":
		activities, err := h.usecase.ActivitiesByName(c.Context(), c.Query("name"))
		if err != nil {
			return appers.SanitizeError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(activities)
	case c.Query("date") != "":
		date, err := time.Parse("2006-01-02", c.Query("date"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid date format, expected 2006-01-02",
			})
		}
		activities, err := h.usecase.ActivitiesByDate(c.Context(), date)
		if err != nil {
			return appers.SanitizeError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(activities)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "one of tag, name or date query parameters is required",
		})
	}
}

// ActivityByID godoc
// @Summary     Активность по идентификатору
// @Produce     json
// @Param       id    path     string true "ID активности"
// @Success     200   {object} entity.Activity
// @Failure     404
// @tags        Activity
// @Router      /activities/api/v1/activity/{id} [get]
func (h *HandlerImpl) ActivityByID(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	act, err := h.usecase.ActivityByID(c.Context(), id)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(act)
}

// ModifyActivity godoc
// @Summary     Изменение активности
// @Description Применяет поля заявки и проверяет коллизию имени/даты/времени. Только для создателя.
// @Accept      json
// @Produce     json
// @Param       id    path     string                  true  "ID активности"
// @Param       body  body     entity.ActivityRequest  true  "Новые данные"
// @Success     200   {object} entity.Activity
// @Failure     401
// @Failure     404
// @Failure     409
// @tags        Activity
// @Router      /activities/api/v1/activity/{id} [put]
func (h *HandlerImpl) ModifyActivity(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req entity.ActivityRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Errorf("error parsing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validator.Validate.Struct(&req); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(err))
	}

	act, err := h.usecase.ModifyActivity(c.Context(), identityFromCtx(c), id, req)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(act)
}

// DeleteActivity godoc
// @Summary     Удаление активности
// @Description Только для создателя; связанные оценки должны быть удаляемы.
// @Produce     json
// @Param       id    path     string true "ID активности"
// @Success     200
// @Failure     401
// @Failure     404
// @Failure     500
// @tags        Activity
// @Router      /activities/api/v1/activity/{id} [delete]
func (h *HandlerImpl) DeleteActivity(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.usecase.DeleteActivity(c.Context(), identityFromCtx(c), id); err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "ACTIVITY SUCCESSFULLY DELETED"})
}

// AddAddress godoc
// @Summary     Привязка адреса к активности
// @Description Прогоняет детектор конфликтов бронирования. Только для создателя.
// @Produce     json
// @Param       id         path string true "ID активности"
// @Param       addressId  path string true "ID адреса"
// @Success     200
// @Failure     401
// @Failure     404
// @Failure     409
// @tags        Activity
// @Router      /activities/api/v1/activity/{id}/address/{addressId} [put]
func (h *HandlerImpl) AddAddress(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	addressID, err := parseUUIDParam(c, "addressId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.usecase.AddAddress(c.Context(), identityFromCtx(c), id, addressID); err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "ADDRESS SUCCESSFULLY ADDED"})
}

// AddTags godoc
// @Summary     Привязка тэгов к активности
// @Description Привязывает существующие тэги по именам. Только для создателя.
// @Accept      json
// @Produce     json
// @Param       id    path     string             true "ID активности"
// @Param       body  body     entity.TagsRequest true "Имена тэгов"
// @Success     200   {object} entity.Activity
// @Failure     400
// @Failure     401
// @Failure     404
// @tags        Activity
// @Router      /activities/api/v1/activity/{id}/tags [put]
func (h *HandlerImpl) AddTags(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req entity.TagsRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Errorf("error parsing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validator.Validate.Struct(&req); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(err))
	}

	act, err := h.usecase.AddTags(c.Context(), identityFromCtx(c), id, req.Names)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(act)
}

// AddParticipant godoc
// @Summary     Запись вызывающего на активность
// @Description Свободное место — в участники, иначе — в лист ожидания.
// @Produce     json
// @Param       id    path     string true "ID активности"
// @Success     200
// @Failure     403
// @Failure     404
// @Failure     409
// @tags        Participants
// @Router      /activities/api/v1/activity/{id}/participants [post]
func (h *HandlerImpl) AddParticipant(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message, err := h.usecase.AddParticipant(c.Context(), identityFromCtx(c), id)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": message})
}

// RemoveParticipant godoc
// @Summary     Удаление участника
// @Description Только для создателя; лист ожидания не затрагивается.
// @Produce     json
// @Param       id      path     string true "ID активности"
// @Param       userId  path     string true "ID участника"
// @Success     200
// @Failure     401
// @Failure     404
// @tags        Participants
// @Router      /activities/api/v1/activity/{id}/participants/{userId} [delete]
func (h *HandlerImpl) RemoveParticipant(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message, err := h.usecase.RemoveParticipant(c.Context(), identityFromCtx(c), id, userID)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": message})
}

// FreePlace godoc
// @Summary     Продвижение из листа ожидания
// @Description Один случайный пользователь из листа ожидания занимает свободное место. Только для создателя.
// @Produce     json
// @Param       id    path     string true "ID активности"
// @Success     200
// @Failure     401
// @Failure     404
// @Failure     409
// @tags        Participants
// @Router      /activities/api/v1/activity/{id}/promote [post]
func (h *HandlerImpl) FreePlace(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message, err := h.usecase.FreePlace(c.Context(), identityFromCtx(c), id)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": message})
}

// OpinionsByActivity godoc
// @Summary     Оценки активности
// @Produce     json
// @Param       id    path     string true "ID активности"
// @Success     200   {array}  entity.Opinion
// @Failure     404
// @tags        Opinions
// @Router      /activities/api/v1/activity/{id}/opinions [get]
func (h *HandlerImpl) OpinionsByActivity(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	opinions, err := h.usecase.OpinionsByActivity(c.Context(), id)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(opinions)
}

// AddOpinion godoc
// @Summary     Оценка активности участником
// @Accept      json
// @Produce     json
// @Param       id    path     string                true "ID активности"
// @Param       body  body     entity.OpinionRequest true "Оценка и комментарий"
// @Success     201   {object} entity.Opinion
// @Failure     400
// @Failure     404
// @Failure     409
// @tags        Opinions
// @Router      /activities/api/v1/activity/{id}/opinions [post]
func (h *HandlerImpl) AddOpinion(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req entity.OpinionRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Errorf("error parsing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validator.Validate.Struct(&req); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(err))
	}

	opinion, err := h.usecase.AddOpinion(c.Context(), identityFromCtx(c), id, req)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(opinion)
}

// DeleteOpinion godoc
// @Summary     Удаление собственной оценки
// @Produce     json
// @Param       id    path     string true "ID активности"
// @Success     200
// @Failure     404
// @tags        Opinions
// @Router      /activities/api/v1/activity/{id}/opinions [delete]
func (h *HandlerImpl) DeleteOpinion(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.usecase.DeleteOpinion(c.Context(), identityFromCtx(c), id); err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "OPINION WAS SUCCESSFULLY DELETED"})
}
