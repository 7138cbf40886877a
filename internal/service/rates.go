package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// Serie estadística del BCRP: tasa de referencia de la política monetaria
const bcrpSeriesCode = "PD04722MM"

type BCRPClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewBCRPClient crea el cliente del servicio de estadísticas del BCRP
func NewBCRPClient(logger *logrus.Logger) *BCRPClient {
	return &BCRPClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// buildSeriesURL arma la URL de la serie en formato XML para los últimos
// doce meses publicados
func buildSeriesURL() string {
	toDate := time.Now().Format("2006-1")
	fromDate := time.Now().AddDate(-1, 0, 0).Format("2006-1")
	return fmt.Sprintf(
		"https://estadisticas.bcrp.gob.pe/estadisticas/series/api/%s/xml/%s/%s",
		bcrpSeriesCode, fromDate, toDate,
	)
}

// fetchSeries descarga la serie y devuelve el cuerpo XML sin procesar
func (c *BCRPClient) fetchSeries() ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, buildSeriesURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error ejecutando la petición HTTP: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("el BCRP respondió con estado %d", resp.StatusCode)
	}

	// Lectura del cuerpo de la respuesta
	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error leyendo la respuesta: %v", err)
	}

	return rawBody, nil
}

// parseXMLResponse extrae el último valor publicado de la serie
func parseXMLResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("error analizando el XML: %v", err)
	}

	// Búsqueda de los periodos publicados
	periods := doc.FindElements("//periods/period")
	if len(periods) == 0 {
		return 0, errors.New("la serie del BCRP no trae periodos publicados")
	}

	latest := periods[len(periods)-1]
	valueElement := latest.FindElement("./values/value")
	if valueElement == nil {
		return 0, errors.New("el elemento <value> no está presente en la respuesta XML")
	}

	rateStr := valueElement.Text()

	var rate float64
	// Conversión de la cadena a número
	if _, err := fmt.Sscanf(rateStr, "%f", &rate); err != nil {
		return 0, fmt.Errorf("error convirtiendo la tasa: %v", err)
	}

	return rate, nil
}

// GetReferenceRate obtiene la tasa de referencia vigente publicada por el BCRP
func (c *BCRPClient) GetReferenceRate() (float64, error) {
	c.logger.Info("Consulta de la tasa de referencia al BCRP...")
	rawBody, err := c.fetchSeries()
	if err != nil {
		c.logger.WithError(err).Error("Error consultando la serie del BCRP")
		return 0, err
	}
	c.logger.Debug("Respuesta del BCRP recibida")

	rate, err := parseXMLResponse(rawBody)
	if err != nil {
		c.logger.WithError(err).Error("Error analizando la respuesta XML del BCRP")
		return 0, err
	}

	c.logger.WithField("reference_rate", rate).Info("Tasa de referencia obtenida")
	return rate, nil
}
