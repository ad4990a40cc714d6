package public

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/paygate-next/internal/constants"

	"github.com/gin-gonic/gin"
)

// HandleMoMoCallback processes the MoMo IPN. MoMo treats HTTP 204 as the
// acknowledgement; anything else is redelivered.
func (h *Handler) HandleMoMoCallback(c *gin.Context) {
	log := requestLog(c)

	params, err := parseMoMoIPNBody(c)
	if err != nil {
		log.Warnw("momo_callback_body_parse_failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"resultCode": 1, "message": "invalid body"})
		return
	}

	log.Infow("momo_callback_received",
		"client_ip", c.ClientIP(),
		"order_id", params["orderId"],
		"result_code", params["resultCode"],
		"trans_id", params["transId"],
	)

	result, err := h.PaymentService.HandleCallback(c.Request.Context(), constants.PaymentMethodMoMo, params)
	if err != nil {
		log.Warnw("momo_callback_rejected", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"resultCode": 1, "message": "callback rejected"})
		return
	}

	log.Infow("momo_callback_processed",
		"payment_id", result.PaymentID,
		"status", result.Status,
		"duplicate", result.Duplicate,
	)
	c.Status(http.StatusNoContent)
}

// parseMoMoIPNBody flattens the IPN JSON into the string map the adapter
// signs over. Numeric fields keep their wire form via json.Number.
func parseMoMoIPNBody(c *gin.Context) (map[string]string, error) {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()

	var body map[string]interface{}
	if err := decoder.Decode(&body); err != nil {
		return nil, err
	}

	params := make(map[string]string, len(body))
	for key, value := range body {
		switch v := value.(type) {
		case string:
			params[key] = v
		case json.Number:
			params[key] = v.String()
		case bool:
			params[key] = strconv.FormatBool(v)
		case nil:
			params[key] = ""
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			params[key] = string(raw)
		}
	}
	return params, nil
}
