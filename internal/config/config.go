package config

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"os"
	"time"
)

// Config contiene la configuración de la aplicación
type Config struct {
	DBHost              string        // Host de la base de datos
	DBPort              string        // Puerto de la base de datos
	DBUser              string        // Usuario de la base de datos
	DBPassword          string        // Contraseña de la base de datos
	DBName              string        // Nombre de la base de datos
	JWTSecret           string        // Secreto para firmar JWT
	TokenExpiry         time.Duration // Vigencia del token
	AtomicDisbursement  bool          // Desembolso en una sola transacción SQL
	DefaultRateFromBCRP bool          // Usar la tasa de referencia del BCRP como TEA por defecto
}

// LoadConfig carga la configuración desde el archivo .env
func LoadConfig() (*Config, error) {
	// Cargamos las variables de entorno desde .env
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Archivo .env no encontrado")
	}

	// Parseamos la vigencia del token
	expiry, err := time.ParseDuration(os.Getenv("TOKEN_EXPIRY"))
	if err != nil {
		expiry = time.Hour // 1 hora por defecto
	}

	// Construimos el objeto de configuración
	config := &Config{
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", "postgres"),
		DBPassword:          getEnv("DB_PASSWORD", "postgres"),
		DBName:              getEnv("DB_NAME", "finanzas"),
		JWTSecret:           getEnv("JWT_SECRET", "llave"),
		TokenExpiry:         expiry,
		AtomicDisbursement:  getEnv("ATOMIC_DISBURSEMENT", "true") == "true",
		DefaultRateFromBCRP: getEnv("DEFAULT_RATE_FROM_BCRP", "false") == "true",
	}

	return config, nil
}

// getEnv devuelve el valor de la variable de entorno o el valor por defecto
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
